package config

import (
	"math"

	"citycam/internal/host"
	"citycam/internal/mathutil"
)

// FieldKind tells the settings UI which control to draw.
type FieldKind int

const (
	FieldFloat FieldKind = iota
	FieldBool
	FieldKey
)

// Field is a live-editable reference to one setting. Setters clamp, so the UI
// can pass raw slider values.
type Field struct {
	Key   string
	Label string
	Kind  FieldKind

	Min, Max, Step float64

	f        *float64
	b        *bool
	k        *host.Key
	defFloat float64
	defKey   host.Key
}

// Fields lists every setting of c in display order. The returned fields point
// into c.
func (c *Config) Fields() []Field {
	def := Default()
	return []Field{
		floatField("camera_move_speed", "Movement speed", &c.Movement.MoveSpeed, 0.25, 128, 1, def.Movement.MoveSpeed),
		floatField("go_faster_speed_multiplier", "\"Go faster\" speed multiplier", &c.Movement.GoFasterSpeedMultiplier, 2, 20, 0.5, def.Movement.GoFasterSpeedMultiplier),
		floatField("rotation_sensitivity", "Sensitivity", &c.Movement.RotationSensitivity, 0.25, 3, 0.05, def.Movement.RotationSensitivity),
		boolField("invert_y_axis", "Invert Y-Axis", &c.Movement.InvertYAxis),
		floatField("field_of_view", "Field of view", &c.Camera.FieldOfView, 30, 120, 1, def.Camera.FieldOfView),
		boolField("snap_to_ground", "Snap to ground", &c.Ground.SnapToGround),
		floatField("ground_offset", "Ground distance", &c.Ground.GroundOffset, 0.25, 32, 0.25, def.Ground.GroundOffset),
		boolField("prevent_clip_ground", "Prevent ground clipping", &c.Ground.PreventClipGround),
		boolField("limit_speed_ground", "Limit speed near ground", &c.Ground.LimitSpeedGround),
		boolField("animate_transitions", "Animated transitions", &c.Transitions.AnimateTransitions),
		floatField("animation_speed", "Transition speed", &c.Transitions.AnimationSpeed, 0.1, 4, 0.1, def.Transitions.AnimationSpeed),
		boolField("allow_user_offset", "Allow movement in vehicle/citizen mode", &c.Follow.AllowUserOffset),
		boolField("integrate_hide_ui", "HideUI integration", &c.Follow.IntegrateHideUI),
		boolField("walkthrough_manual", "Manual switching in walkthrough mode", &c.Walkthrough.Manual),
		floatField("walkthrough_timer", "Walkthrough stay duration", &c.Walkthrough.Timer, 10, 60, 1, def.Walkthrough.Timer),
		keyField("toggle_key", "Hotkey to toggle first-person", &c.Keys.Toggle, def.Keys.Toggle),
		keyField("show_mouse_key", "Hotkey to show cursor (hold)", &c.Keys.ShowMouse, def.Keys.ShowMouse),
		keyField("go_faster_key", "\"Go faster\" hotkey (hold)", &c.Keys.GoFaster, def.Keys.GoFaster),
	}
}

// Field returns the named field of c.
func (c *Config) Field(key string) (Field, bool) {
	for _, f := range c.Fields() {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

func floatField(key, label string, p *float64, lo, hi, step, def float64) Field {
	return Field{Key: key, Label: label, Kind: FieldFloat, Min: lo, Max: hi, Step: step, f: p, defFloat: def}
}

func boolField(key, label string, p *bool) Field {
	return Field{Key: key, Label: label, Kind: FieldBool, b: p}
}

func keyField(key, label string, p *host.Key, def host.Key) Field {
	return Field{Key: key, Label: label, Kind: FieldKey, k: p, defKey: def}
}

// Float returns the current value of a float field.
func (f Field) Float() float64 {
	if f.f == nil {
		return 0
	}
	return *f.f
}

// SetFloat stores v clamped to the field range. NaN restores the default.
func (f Field) SetFloat(v float64) {
	if f.f == nil {
		return
	}
	if math.IsNaN(v) {
		v = f.defFloat
	}
	*f.f = mathutil.Clamp(v, f.Min, f.Max)
}

// Nudge moves a float field by steps increments.
func (f Field) Nudge(steps int) {
	f.SetFloat(f.Float() + float64(steps)*f.Step)
}

// Bool returns the current value of a bool field.
func (f Field) Bool() bool {
	return f.b != nil && *f.b
}

// SetBool stores v.
func (f Field) SetBool(v bool) {
	if f.b != nil {
		*f.b = v
	}
}

// KeyName returns the current binding of a key field.
func (f Field) KeyName() host.Key {
	if f.k == nil {
		return ""
	}
	return *f.k
}

// SetKey rebinds a key field. An empty name restores the default binding.
func (f Field) SetKey(k host.Key) {
	if f.k == nil {
		return
	}
	if k == "" {
		k = f.defKey
	}
	*f.k = k
}

func (f Field) normalize() {
	switch f.Kind {
	case FieldFloat:
		f.SetFloat(f.Float())
	case FieldKey:
		f.SetKey(f.KeyName())
	}
}
