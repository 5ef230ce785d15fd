package psx

import (
	"fmt"
	"log/slog"
	"time"
)

// State is a step of the mode configuration state machine.
type State int

const (
	StateIdle State = iota
	StateProbing
	StateConfigEntered
	StateStickConfig
	StateRumbleConfig
	StatePressureConfig
	StateConfigExited
	StateDone
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:           "idle",
	StateProbing:        "probing",
	StateConfigEntered:  "config-entered",
	StateStickConfig:    "stick-config",
	StateRumbleConfig:   "rumble-config",
	StatePressureConfig: "pressure-config",
	StateConfigExited:   "config-exited",
	StateDone:           "done",
	StateFailed:         "failed",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// PadType is the controller type reported by the read-type command.
type PadType byte

const (
	PadTypeUnknown    PadType = 0x00
	PadTypeGuitarHero PadType = 0x01
	PadTypeDualShock2 PadType = 0x03
	PadTypeWireless   PadType = 0x0C
)

func (t PadType) String() string {
	switch t {
	case PadTypeUnknown:
		return "unknown"
	case PadTypeGuitarHero:
		return "guitar hero"
	case PadTypeDualShock2:
		return "dualshock 2"
	case PadTypeWireless:
		return "wireless"
	}
	return fmt.Sprintf("type 0x%02x", byte(t))
}

// Features selects the modes the configurator switches on.
type Features struct {
	Sticks   bool
	Rumble   bool
	Pressure bool
}

// stableReplies is how many consecutive good replies confirm a mode command.
// Pads never acknowledge a specific mode, only that they keep answering.
const stableReplies = 3

// Configurator switches a pad into the requested modes.
//
// The sequence is Idle → Probing → ConfigEntered → (StickConfig,
// RumbleConfig, PressureConfig for each enabled feature) → ConfigExited →
// Done. Any retry loop that runs out of CommandTimeout ends in Failed. A
// feature that times out still goes through ConfigExited so the pad is not
// left in its config mode.
type Configurator struct {
	link    *link
	feat    Features
	logger  *slog.Logger
	state   State
	err     error
	padType PadType
	trail   []State
}

type stepFunc func(*Configurator) State

var transitions = map[State]stepFunc{
	StateIdle:           (*Configurator).start,
	StateProbing:        (*Configurator).probe,
	StateConfigEntered:  (*Configurator).enter,
	StateStickConfig:    (*Configurator).configureSticks,
	StateRumbleConfig:   (*Configurator).configureRumble,
	StatePressureConfig: (*Configurator).configurePressure,
	StateConfigExited:   (*Configurator).exit,
}

var featureOrder = []State{StateStickConfig, StateRumbleConfig, StatePressureConfig}

func newConfigurator(l *link, feat Features, logger *slog.Logger) *Configurator {
	return &Configurator{link: l, feat: feat, logger: logger, state: StateIdle}
}

// Run drives the state machine to Done or Failed and returns the reason
// for a failure. ErrNoDevice and ErrConfigTimeout are the possible causes.
func (m *Configurator) Run() error {
	m.state = StateIdle
	m.err = nil
	m.trail = m.trail[:0]
	for m.state != StateDone && m.state != StateFailed {
		m.trail = append(m.trail, m.state)
		next := transitions[m.state](m)
		m.logger.Debug("psx: config transition", "from", m.state, "to", next)
		m.state = next
	}
	m.trail = append(m.trail, m.state)
	return m.err
}

// State returns the state the last Run stopped in.
func (m *Configurator) State() State { return m.state }

// Type returns the controller type read while in config mode.
func (m *Configurator) Type() PadType { return m.padType }

// Trail returns the states visited by the last Run, in order.
func (m *Configurator) Trail() []State { return append([]State(nil), m.trail...) }

func (m *Configurator) start() State { return StateProbing }

func (m *Configurator) probe() State {
	m.link.exchange(pollCmd)
	f := m.link.exchange(pollCmd)
	if !knownID(f.ID()) {
		m.err = fmt.Errorf("%w: mode byte 0x%02x", ErrNoDevice, f.ID())
		return StateFailed
	}
	m.logger.Debug("psx: controller found", "id", fmt.Sprintf("0x%02x", f.ID()), "mode", f.Mode())
	return StateConfigEntered
}

func (m *Configurator) enter() State {
	if err := m.untilConfigReply(enterConfigCmd, "enter config"); err != nil {
		m.err = err
		return StateFailed
	}
	if f := m.link.exchange(readTypeCmd); f.IsConfig() && len(f) > offButtonsLo {
		m.padType = PadType(f[offButtonsLo])
	}
	return m.nextFeature(StateConfigEntered)
}

func (m *Configurator) configureSticks() State {
	return m.feature(StateStickConfig, setModeCmd(true), "set analog mode")
}

func (m *Configurator) configureRumble() State {
	return m.feature(StateRumbleConfig, enableRumbleCmd(), "enable rumble")
}

func (m *Configurator) configurePressure() State {
	return m.feature(StatePressureConfig, pressureCmd, "enable pressure")
}

func (m *Configurator) feature(self State, cmd []byte, what string) State {
	if err := m.untilStable(cmd, what); err != nil {
		m.err = err
		return StateConfigExited
	}
	m.link.clock.Sleep(m.link.timing.ModeSettle)
	return m.nextFeature(self)
}

func (m *Configurator) exit() State {
	if err := m.untilConfigReply(exitConfigCmd, "exit config"); err != nil && m.err == nil {
		m.err = err
	}
	if m.err != nil {
		return StateFailed
	}
	return StateDone
}

// nextFeature returns the first enabled feature state after self, or
// ConfigExited when none is left.
func (m *Configurator) nextFeature(self State) State {
	enabled := map[State]bool{
		StateStickConfig:    m.feat.Sticks,
		StateRumbleConfig:   m.feat.Rumble,
		StatePressureConfig: m.feat.Pressure,
	}
	for _, s := range featureOrder {
		if s > self && enabled[s] {
			return s
		}
	}
	return StateConfigExited
}

// untilConfigReply repeats cmd until the pad answers from its config mode.
// Every miss after the first lengthens the inter-command delay.
func (m *Configurator) untilConfigReply(cmd []byte, what string) error {
	deadline := m.link.clock.Now().Add(m.link.timing.CommandTimeout)
	for attempt := 1; ; attempt++ {
		f := m.link.exchange(cmd)
		if f.Valid() && f.IsConfig() {
			m.logger.Debug("psx: "+what, "attempts", attempt, "readDelay", m.link.readDelay)
			return nil
		}
		// A pad answers the first enter command from its normal mode.
		if attempt > 1 || !f.Valid() {
			m.link.slowDown()
		}
		if m.expired(deadline) {
			return fmt.Errorf("%s: %w after %d attempts (last reply %s)", what, ErrConfigTimeout, attempt, f)
		}
	}
}

// untilStable repeats cmd until stableReplies consecutive config replies
// were seen.
func (m *Configurator) untilStable(cmd []byte, what string) error {
	deadline := m.link.clock.Now().Add(m.link.timing.CommandTimeout)
	good := 0
	for attempt := 1; ; attempt++ {
		f := m.link.exchange(cmd)
		if f.Valid() && f.IsConfig() {
			good++
		} else {
			good = 0
		}
		if good == stableReplies {
			m.logger.Debug("psx: "+what, "attempts", attempt)
			return nil
		}
		if m.expired(deadline) {
			return fmt.Errorf("%s: %w after %d attempts", what, ErrConfigTimeout, attempt)
		}
	}
}

func (m *Configurator) expired(deadline time.Time) bool {
	return !m.link.clock.Now().Before(deadline)
}

// resync sends the full configuration sequence once without waiting for
// confirmation. Update uses it to pull a pad that dropped out of its mode
// back in without blocking for the whole timeout budget.
func (m *Configurator) resync() {
	m.link.exchange(enterConfigCmd)
	if m.feat.Sticks {
		m.link.exchange(setModeCmd(true))
	}
	if m.feat.Rumble {
		m.link.exchange(enableRumbleCmd())
	}
	if m.feat.Pressure {
		m.link.exchange(pressureCmd)
	}
	m.link.exchange(exitConfigCmd)
}
