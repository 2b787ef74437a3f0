package content

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"scene-director/internal/scene"
)

// FileName is the scene description inside a content directory.
const FileName = "scene.yaml"

// Built-in section triggers dispatched on click. Any other trigger names a prop in Content.Props.
const (
	TriggerThrow        = "throw"
	TriggerJump         = "jump"
	TriggerVehicleReset = "vehicle-reset"
)

var ErrInvalid = errors.New("content: invalid")

// Content is the authored scene: section table, camera rig, toys and static environment.
type Content struct {
	Gravity     float32            `yaml:"gravity"`
	Models      string             `yaml:"models"`
	Sections    []Section          `yaml:"sections"`
	Camera      Camera             `yaml:"camera"`
	Vehicle     Vehicle            `yaml:"vehicle"`
	Throwables  []ThrowableSet     `yaml:"throwables"`
	Racer       Racer              `yaml:"racer"`
	Props       map[string]PropDef `yaml:"props"`
	Chart       *Chart             `yaml:"chart,omitempty"`
	Figure      *Figure            `yaml:"figure,omitempty"`
	Lights      Lights             `yaml:"lights"`
	Environment Environment        `yaml:"environment"`
}

// Section is one scroll stop. Spawn is where the section's trigger places things.
type Section struct {
	ID       int        `yaml:"id"`
	Title    string     `yaml:"title"`
	Body     string     `yaml:"body"`
	Waypoint mgl32.Vec3 `yaml:"waypoint"`
	Pitch    float32    `yaml:"pitch"`
	Trigger  string     `yaml:"trigger,omitempty"`
	Spawn    mgl32.Vec3 `yaml:"spawn,omitempty"`
}

// Camera describes the rig's resting pose and easing.
type Camera struct {
	Position     mgl32.Vec3 `yaml:"position"`
	Pitch        float32    `yaml:"pitch"`
	Distance     float32    `yaml:"distance"`
	Ease         string     `yaml:"ease"`
	ParallaxEase string     `yaml:"parallax_ease"`
	Fov          float32    `yaml:"fov"`
}

// Material is shared collider tuning.
type Material struct {
	Mass        float32 `yaml:"mass"`
	Friction    float32 `yaml:"friction"`
	Restitution float32 `yaml:"restitution"`
}

type Vehicle struct {
	Model          string     `yaml:"model"`
	Position       mgl32.Vec3 `yaml:"position"`
	ForwardSpeed   float32    `yaml:"forward_speed"`
	ReverseSpeed   float32    `yaml:"reverse_speed"`
	MotorFactor    float32    `yaml:"motor_factor"`
	MaxSteer       float32    `yaml:"max_steer"`
	SteerStiffness float32    `yaml:"steer_stiffness"`
	SteerDamping   float32    `yaml:"steer_damping"`
}

// ThrowableSet is a group of bodies built from named model nodes that share one throw policy.
type ThrowableSet struct {
	Name           string     `yaml:"name"`
	Model          string     `yaml:"model"`
	Nodes          []string   `yaml:"nodes"`
	Position       mgl32.Vec3 `yaml:"position"`
	Scale          float32    `yaml:"scale"`
	Strength       float32    `yaml:"strength"`
	LinearDamping  float32    `yaml:"linear_damping"`
	AngularDamping float32    `yaml:"angular_damping"`
	Material       Material   `yaml:"material"`
}

type Racer struct {
	Model     string     `yaml:"model"`
	Position  mgl32.Vec3 `yaml:"position"`
	Scale     float32    `yaml:"scale"`
	RotationY float32    `yaml:"rotation_y"`
	Run       string     `yaml:"run"`
	Jump      string     `yaml:"jump"`
	Fade      float32    `yaml:"fade"`
}

// PropDef is a section-scoped prop: one dynamic body per listed node, offset by Spacing along X.
type PropDef struct {
	Model          string     `yaml:"model"`
	Nodes          []string   `yaml:"nodes"`
	Spacing        float32    `yaml:"spacing"`
	Rotation       mgl32.Vec3 `yaml:"rotation"`
	LinearDamping  float32    `yaml:"linear_damping"`
	AngularDamping float32    `yaml:"angular_damping"`
	Radius         float32    `yaml:"radius"`
	HalfHeight     float32    `yaml:"half_height"`
	Offset         mgl32.Vec3 `yaml:"offset"`
	Material       Material   `yaml:"material"`
}

// Chart is the floating coin chart. Coins name the nodes that spin when the cursor passes over
// them; every node floats.
type Chart struct {
	Model     string     `yaml:"model"`
	Position  mgl32.Vec3 `yaml:"position"`
	Coins     []string   `yaml:"coins"`
	Float     float32    `yaml:"float"`
	Period    float32    `yaml:"period"`
	Radius    float32    `yaml:"radius"`
	Threshold float32    `yaml:"threshold"`
}

// Figure is a character that loops one clip and has no body.
type Figure struct {
	Model    string     `yaml:"model"`
	Position mgl32.Vec3 `yaml:"position"`
	Scale    float32    `yaml:"scale"`
	Clip     string     `yaml:"clip"`
}

// MaxSpots is the most spot lights the renderer takes.
const MaxSpots = 8

// Lights is the spot rig over the shelf boards. Every spot points straight down and shares
// the cone settings. Angle is the half cone in radians.
type Lights struct {
	Ambient   string       `yaml:"ambient,omitempty"`
	Color     string       `yaml:"color,omitempty"`
	Intensity float32      `yaml:"intensity"`
	Angle     float32      `yaml:"angle"`
	Penumbra  float32      `yaml:"penumbra"`
	Distance  float32      `yaml:"distance"`
	Spots     []mgl32.Vec3 `yaml:"spots"`
}

// Decor is a model placed once at startup. With a Body it is a dynamic body that never sleeps,
// so it rides whatever it stands on; without one it is only a mesh.
type Decor struct {
	Name     string     `yaml:"name"`
	Model    string     `yaml:"model"`
	Position mgl32.Vec3 `yaml:"position"`
	Scale    float32    `yaml:"scale"`
	Rotation mgl32.Vec3 `yaml:"rotation"`
	Body     *DecorBody `yaml:"body,omitempty"`
}

type DecorBody struct {
	Half           mgl32.Vec3 `yaml:"half_extents"`
	Offset         mgl32.Vec3 `yaml:"offset"`
	LinearDamping  float32    `yaml:"linear_damping"`
	AngularDamping float32    `yaml:"angular_damping"`
	Material       Material   `yaml:"material"`
}

// Box is a static box: a floor or an invisible wall.
type Box struct {
	Size     mgl32.Vec3 `yaml:"size"`
	Position mgl32.Vec3 `yaml:"position"`
	Color    string     `yaml:"color,omitempty"`
	Hidden   bool       `yaml:"hidden,omitempty"`
}

// Shelf is the fixed triangle-mesh backdrop.
type Shelf struct {
	Model    string     `yaml:"model"`
	Node     string     `yaml:"node"`
	Position mgl32.Vec3 `yaml:"position"`
	Material Material   `yaml:"material"`
}

// Desk is the oscillating fixed body.
type Desk struct {
	Model    string     `yaml:"model"`
	Position mgl32.Vec3 `yaml:"position"`
	Half     mgl32.Vec3 `yaml:"half_extents"`
	Offset   mgl32.Vec3 `yaml:"offset"`
	Min      float32    `yaml:"min"`
	Max      float32    `yaml:"max"`
	Period   float32    `yaml:"period"`
	Friction float32    `yaml:"friction"`
}

type Environment struct {
	Floor Box     `yaml:"floor"`
	Walls []Box   `yaml:"walls"`
	Shelf *Shelf  `yaml:"shelf,omitempty"`
	Desk  *Desk   `yaml:"desk,omitempty"`
	Decor []Decor `yaml:"decor,omitempty"`
}

// Load reads and validates name from fsys.
func Load(fsys fs.FS, name string) (*Content, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("content: read %s: %w", name, err)
	}
	return Parse(data)
}

// LoadDir reads FileName from dir on disk.
func LoadDir(dir string) (*Content, error) {
	return Load(os.DirFS(dir), FileName)
}

// Parse decodes YAML, rejecting unknown keys, then validates the result.
func Parse(data []byte) (*Content, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var c Content
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("content: parse: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks section ids run 1..N in order and every trigger is built in or names a prop.
func (c *Content) Validate() error {
	if len(c.Sections) == 0 {
		return fmt.Errorf("%w: no sections", ErrInvalid)
	}
	for i, s := range c.Sections {
		if s.ID != i+1 {
			return fmt.Errorf("%w: section %d has id %d, want %d", ErrInvalid, i, s.ID, i+1)
		}
		switch s.Trigger {
		case "", TriggerThrow, TriggerJump, TriggerVehicleReset:
		default:
			if _, ok := c.Props[s.Trigger]; !ok {
				return fmt.Errorf("%w: section %d has unknown trigger %q", ErrInvalid, s.ID, s.Trigger)
			}
		}
	}
	for _, w := range append([]Box{c.Environment.Floor}, c.Environment.Walls...) {
		if w.Size != (mgl32.Vec3{}) && (w.Size[0] <= 0 || w.Size[1] <= 0 || w.Size[2] <= 0) {
			return fmt.Errorf("%w: box size %v", ErrInvalid, w.Size)
		}
	}
	if c.Environment.Floor.Color != "" {
		if _, err := scene.ParseColor(c.Environment.Floor.Color); err != nil {
			return fmt.Errorf("%w: floor: %v", ErrInvalid, err)
		}
	}
	for _, d := range c.Environment.Decor {
		if d.Model == "" {
			return fmt.Errorf("%w: decor %q has no model", ErrInvalid, d.Name)
		}
		if b := d.Body; b != nil && (b.Half[0] <= 0 || b.Half[1] <= 0 || b.Half[2] <= 0) {
			return fmt.Errorf("%w: decor %q half extents %v", ErrInvalid, d.Name, b.Half)
		}
	}
	if ch := c.Chart; ch != nil && len(ch.Coins) == 0 {
		return fmt.Errorf("%w: chart has no coins", ErrInvalid)
	}
	return c.Lights.validate()
}

func (l Lights) validate() error {
	if len(l.Spots) > MaxSpots {
		return fmt.Errorf("%w: %d spot lights, at most %d", ErrInvalid, len(l.Spots), MaxSpots)
	}
	for _, col := range []string{l.Ambient, l.Color} {
		if col == "" {
			continue
		}
		if _, err := scene.ParseColor(col); err != nil {
			return fmt.Errorf("%w: lights: %v", ErrInvalid, err)
		}
	}
	if l.Angle < 0 || l.Penumbra < 0 || l.Penumbra > 1 || l.Distance < 0 {
		return fmt.Errorf("%w: lights cone angle %v penumbra %v distance %v", ErrInvalid, l.Angle, l.Penumbra, l.Distance)
	}
	return nil
}

// Section returns the section with id, which must be in [1, len(Sections)].
func (c *Content) Section(id int) Section {
	return c.Sections[id-1]
}
