package camera

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"

	"scene-director/internal/scene"
)

// Transform is a node pose as saved to disk. Rotation is x, y, z, w.
type Transform struct {
	Position [3]float32 `json:"position"`
	Rotation [4]float32 `json:"rotation"`
}

// State is the saved rig: pivot, yaw and pitch poses.
type State struct {
	Pivot Transform `json:"pivot"`
	Yaw   Transform `json:"yaw"`
	Pitch Transform `json:"pitch"`
}

func capture(n *scene.Node) Transform {
	q := n.Rotation
	return Transform{Position: n.Position, Rotation: [4]float32{q.V[0], q.V[1], q.V[2], q.W}}
}

func (t Transform) quat() mgl32.Quat {
	q := mgl32.Quat{W: t.Rotation[3], V: mgl32.Vec3{t.Rotation[0], t.Rotation[1], t.Rotation[2]}}
	if q.Len() == 0 {
		return mgl32.QuatIdent()
	}
	return q.Normalize()
}

// State snapshots the rig.
func (c *Choreographer) State() State {
	return State{
		Pivot: capture(c.Pivot),
		Yaw:   capture(c.Yaw),
		Pitch: capture(c.Pitch),
	}
}

// Restore stops any waypoint move and applies s to the rig.
func (c *Choreographer) Restore(s State) {
	c.tweens.Kill(keyYaw)
	c.tweens.Kill(keyPitch)
	c.Pivot.SetPose(s.Pivot.Position, s.Pivot.quat())
	c.Yaw.SetPose(s.Yaw.Position, s.Yaw.quat())
	c.Pitch.Position = s.Pitch.Position
	c.SetPitch(pitchFromQuat(s.Pitch.quat()))
}

// Save writes the rig state to path as JSON, creating its directory if needed.
func (c *Choreographer) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("camera: create dir for %s: %w", path, err)
	}
	data, err := json.MarshalIndent(c.State(), "", "\t")
	if err != nil {
		return fmt.Errorf("camera: encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("camera: save %s: %w", path, err)
	}
	c.log.Info().Str("path", path).Msg("rig saved")
	return nil
}

// Load reads a state written by Save and restores it.
func (c *Choreographer) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("camera: load %s: %w", path, err)
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("camera: decode %s: %w", path, err)
	}
	c.Restore(s)
	c.log.Info().Str("path", path).Msg("rig loaded")
	return nil
}
