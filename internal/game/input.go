package game

import (
	"math"

	"citycam/internal/host"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog"
)

const (
	// pointerScale converts cursor pixels to look degrees at sensitivity 1.
	pointerScale = 0.15
	// stickScale is look degrees per tick at full right-stick deflection.
	stickScale    = 3.0
	stickDeadZone = 0.15
)

// Input adapts ebiten's polled input to host.Input. Poll must run once per tick
// before anything reads it.
type Input struct {
	log     zerolog.Logger
	keys    map[host.Key]ebiten.Key
	unknown map[host.Key]bool

	cursorX, cursorY int
	hasCursor        bool

	dx, dy float64
	scroll float64
	click  bool

	gamepads   []ebiten.GamepadID
	loggedPads bool

	// Set while the HUD owns keyboard and pointer, e.g. during key capture.
	blocked bool
}

// NewInput creates an input adapter.
func NewInput(log zerolog.Logger) *Input {
	return &Input{
		log:     log.With().Str("component", "input").Logger(),
		keys:    make(map[host.Key]ebiten.Key),
		unknown: make(map[host.Key]bool),
	}
}

// Poll samples pointer, wheel and gamepad state for this tick.
func (in *Input) Poll() {
	x, y := ebiten.CursorPosition()
	in.dx, in.dy = 0, 0
	if in.hasCursor {
		// Screen Y grows downward; look deltas use +Y for up.
		in.dx = float64(x-in.cursorX) * pointerScale
		in.dy = -float64(y-in.cursorY) * pointerScale
	}
	in.cursorX, in.cursorY, in.hasCursor = x, y, true

	_, in.scroll = ebiten.Wheel()
	in.click = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)

	in.pollGamepad()
}

func (in *Input) pollGamepad() {
	in.gamepads = ebiten.AppendGamepadIDs(in.gamepads[:0])
	if len(in.gamepads) == 0 {
		if !in.loggedPads {
			in.log.Debug().Msg("no gamepad connected, right stick look disabled")
			in.loggedPads = true
		}
		return
	}
	id := in.gamepads[0]
	if !ebiten.IsStandardGamepadLayoutAvailable(id) {
		return
	}
	sx := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickHorizontal)
	sy := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickVertical)
	in.dx += deadZone(sx) * stickScale
	in.dy -= deadZone(sy) * stickScale
}

func deadZone(v float64) float64 {
	if math.Abs(v) < stickDeadZone {
		return 0
	}
	return v
}

// resolve maps a key name to an ebiten key. Unknown names are logged once and
// then treated as never pressed.
func (in *Input) resolve(k host.Key) (ebiten.Key, bool) {
	if ek, ok := in.keys[k]; ok {
		return ek, true
	}
	if k == "" || in.unknown[k] {
		return 0, false
	}
	var ek ebiten.Key
	if err := ek.UnmarshalText([]byte(k)); err != nil {
		in.unknown[k] = true
		in.log.Warn().Err(err).Str("key", string(k)).Msg("unknown key name, binding ignored")
		return 0, false
	}
	in.keys[k] = ek
	return ek, true
}

// KeyHeld implements host.Input.
func (in *Input) KeyHeld(k host.Key) bool {
	ek, ok := in.resolve(k)
	return ok && !in.blocked && ebiten.IsKeyPressed(ek)
}

// KeyPressed implements host.Input.
func (in *Input) KeyPressed(k host.Key) bool {
	ek, ok := in.resolve(k)
	return ok && !in.blocked && inpututil.IsKeyJustPressed(ek)
}

// ClickPressed implements host.Input.
func (in *Input) ClickPressed() bool {
	return in.click && !in.blocked
}

// PointerDelta implements host.Input.
func (in *Input) PointerDelta() (dx, dy float64) {
	if in.blocked {
		return 0, 0
	}
	return in.dx, in.dy
}

// ScrollDelta implements host.Input.
func (in *Input) ScrollDelta() float64 {
	if in.blocked {
		return 0
	}
	return in.scroll
}

// Cursor returns the pointer position in screen pixels.
func (in *Input) Cursor() (x, y int) {
	return in.cursorX, in.cursorY
}

// consumeClick hides this tick's click from later readers.
func (in *Input) consumeClick() {
	in.click = false
}

// consumeScroll hides this tick's wheel movement from later readers.
func (in *Input) consumeScroll() {
	in.scroll = 0
}

// keyName is the host name for an ebiten key.
func keyName(k ebiten.Key) host.Key {
	return host.Key(k.String())
}
