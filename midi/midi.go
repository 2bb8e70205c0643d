package midi

import (
	"fmt"
	"strconv"
	"sync/atomic"
)

const (
	// MinChannel and MaxChannel bound the 1-based MIDI channel numbering.
	MinChannel = 1
	MaxChannel = 16

	// MaxDataValue is the upper bound of 7-bit MIDI data bytes.
	MaxDataValue = 127

	// DefaultChannel and DefaultController are applied by NewControlEmitter.
	DefaultChannel    = 1
	DefaultController = 14

	statusControlChange = 0xB0
)

// Message is a 3-byte control-change message in wire order: status byte with
// embedded channel, controller number, controller value.
type Message [3]byte

// ControllerEvent builds a control-change message. Channel is 1-based
// (1..16); controller and value are 7-bit (0..127).
func ControllerEvent(channel, controller, value int) (Message, error) {
	if channel < MinChannel || channel > MaxChannel {
		return Message{}, fmt.Errorf("midi: channel must be in [%d, %d]: %d", MinChannel, MaxChannel, channel)
	}

	if controller < 0 || controller > MaxDataValue {
		return Message{}, fmt.Errorf("midi: controller must be in [0, %d]: %d", MaxDataValue, controller)
	}

	if value < 0 || value > MaxDataValue {
		return Message{}, fmt.Errorf("midi: value must be in [0, %d]: %d", MaxDataValue, value)
	}

	return Message{
		statusControlChange | byte(channel-1),
		byte(controller),
		byte(value),
	}, nil
}

// Channel returns the 1-based channel number.
func (m Message) Channel() int { return int(m[0]&0x0F) + 1 }

// Controller returns the controller number.
func (m Message) Controller() int { return int(m[1]) }

// Value returns the controller value.
func (m Message) Value() int { return int(m[2]) }

// Sender delivers an encoded message to an output device, driver bus or
// network transport. Implementations decide addressing and framing; this
// package only produces the bytes.
type Sender interface {
	Send(Message) error
}

// SenderFunc adapts a plain function to the Sender interface.
type SenderFunc func(Message) error

// Send calls fn(m).
func (fn SenderFunc) Send(m Message) error { return fn(m) }

// ControlEmitter turns emitted control values into control-change messages
// on a configured channel and controller number, forwarding them to a
// Sender. It satisfies the follower Emitter contract.
//
// Emit runs on the processing goroutine; channel and controller updates and
// Status reads may come from other goroutines, so all mutable state is held
// in atomics. Send errors do not interrupt the stream; the most recent one
// is retained for inspection.
type ControlEmitter struct {
	sender     Sender
	channel    atomic.Int64
	controller atomic.Int64
	lastValue  atomic.Int64
	sendErr    atomic.Value
}

// NewControlEmitter creates an emitter on channel 1, controller 14.
// sender must not be nil.
func NewControlEmitter(sender Sender) (*ControlEmitter, error) {
	if sender == nil {
		return nil, fmt.Errorf("midi: sender must not be nil")
	}

	e := &ControlEmitter{sender: sender}
	e.channel.Store(DefaultChannel)
	e.controller.Store(DefaultController)

	return e, nil
}

// SetChannel sets the 1-based output channel.
func (e *ControlEmitter) SetChannel(channel int) error {
	if channel < MinChannel || channel > MaxChannel {
		return fmt.Errorf("midi: channel must be in [%d, %d]: %d", MinChannel, MaxChannel, channel)
	}

	e.channel.Store(int64(channel))

	return nil
}

// SetController sets the controller number.
func (e *ControlEmitter) SetController(controller int) error {
	if controller < 0 || controller > MaxDataValue {
		return fmt.Errorf("midi: controller must be in [0, %d]: %d", MaxDataValue, controller)
	}

	e.controller.Store(int64(controller))

	return nil
}

// Channel returns the configured output channel.
func (e *ControlEmitter) Channel() int { return int(e.channel.Load()) }

// Controller returns the configured controller number.
func (e *ControlEmitter) Controller() int { return int(e.controller.Load()) }

// Emit encodes value on the configured channel and controller and forwards
// it. Values outside the 7-bit MIDI domain are clamped; the pipeline's
// output range is user-configurable and may legitimately exceed it.
func (e *ControlEmitter) Emit(value int) {
	if value < 0 {
		value = 0
	} else if value > MaxDataValue {
		value = MaxDataValue
	}

	msg, err := ControllerEvent(int(e.channel.Load()), int(e.controller.Load()), value)
	if err != nil {
		e.sendErr.Store(err)
		return
	}

	e.lastValue.Store(int64(value))

	if err := e.sender.Send(msg); err != nil {
		e.sendErr.Store(err)
	}
}

// LastValue returns the most recently emitted value.
func (e *ControlEmitter) LastValue() int { return int(e.lastValue.Load()) }

// Err returns the most recent send error, nil if none occurred.
func (e *ControlEmitter) Err() error {
	if err, ok := e.sendErr.Load().(error); ok {
		return err
	}

	return nil
}

// Status returns a short human-readable "channel controller value" line for
// display surfaces.
func (e *ControlEmitter) Status() string {
	return strconv.FormatInt(e.channel.Load(), 10) + " " +
		strconv.FormatInt(e.controller.Load(), 10) + " " +
		strconv.FormatInt(e.lastValue.Load(), 10)
}
