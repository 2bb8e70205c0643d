package midi

import (
	"errors"
	"testing"
)

// TestControllerEvent verifies wire encoding and validation.
func TestControllerEvent(t *testing.T) {
	tests := []struct {
		name       string
		channel    int
		controller int
		value      int
		want       Message
		wantErr    bool
	}{
		{"channel 1", 1, 14, 63, Message{0xB0, 14, 63}, false},
		{"channel 16", 16, 0, 127, Message{0xBF, 0, 127}, false},
		{"channel 10", 10, 7, 0, Message{0xB9, 7, 0}, false},
		{"channel 0 invalid", 0, 14, 63, Message{}, true},
		{"channel 17 invalid", 17, 14, 63, Message{}, true},
		{"controller negative", 1, -1, 63, Message{}, true},
		{"controller 128 invalid", 1, 128, 63, Message{}, true},
		{"value negative", 1, 14, -1, Message{}, true},
		{"value 128 invalid", 1, 14, 128, Message{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ControllerEvent(tt.channel, tt.controller, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ControllerEvent() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && got != tt.want {
				t.Errorf("ControllerEvent() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestMessageAccessors verifies round-tripping through the wire form.
func TestMessageAccessors(t *testing.T) {
	m, err := ControllerEvent(5, 74, 100)
	if err != nil {
		t.Fatalf("ControllerEvent() error = %v", err)
	}

	if m.Channel() != 5 {
		t.Errorf("Channel() = %d, want 5", m.Channel())
	}

	if m.Controller() != 74 {
		t.Errorf("Controller() = %d, want 74", m.Controller())
	}

	if m.Value() != 100 {
		t.Errorf("Value() = %d, want 100", m.Value())
	}
}

// TestNewControlEmitter verifies defaults and nil-sender rejection.
func TestNewControlEmitter(t *testing.T) {
	if _, err := NewControlEmitter(nil); err == nil {
		t.Error("NewControlEmitter(nil) expected error")
	}

	e, err := NewControlEmitter(SenderFunc(func(Message) error { return nil }))
	if err != nil {
		t.Fatalf("NewControlEmitter() error = %v", err)
	}

	if e.Channel() != DefaultChannel {
		t.Errorf("Channel() = %d, want %d", e.Channel(), DefaultChannel)
	}

	if e.Controller() != DefaultController {
		t.Errorf("Controller() = %d, want %d", e.Controller(), DefaultController)
	}
}

// TestControlEmitterEmit verifies forwarding, clamping and status text.
func TestControlEmitterEmit(t *testing.T) {
	var sent []Message

	e, _ := NewControlEmitter(SenderFunc(func(m Message) error {
		sent = append(sent, m)
		return nil
	}))

	if err := e.SetChannel(3); err != nil {
		t.Fatal(err)
	}

	if err := e.SetController(74); err != nil {
		t.Fatal(err)
	}

	e.Emit(63)
	e.Emit(200) // clamped to 127
	e.Emit(-5)  // clamped to 0

	want := []Message{
		{0xB2, 74, 63},
		{0xB2, 74, 127},
		{0xB2, 74, 0},
	}

	if len(sent) != len(want) {
		t.Fatalf("sent %d messages, want %d", len(sent), len(want))
	}

	for i := range want {
		if sent[i] != want[i] {
			t.Errorf("message %d = %v, want %v", i, sent[i], want[i])
		}
	}

	if got := e.Status(); got != "3 74 0" {
		t.Errorf("Status() = %q, want %q", got, "3 74 0")
	}

	if err := e.Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}
}

// TestControlEmitterSendError verifies a failing sender is recorded without
// interrupting emission.
func TestControlEmitterSendError(t *testing.T) {
	sendErr := errors.New("device gone")

	e, _ := NewControlEmitter(SenderFunc(func(Message) error { return sendErr }))

	e.Emit(10)
	e.Emit(20)

	if !errors.Is(e.Err(), sendErr) {
		t.Errorf("Err() = %v, want %v", e.Err(), sendErr)
	}

	if e.LastValue() != 20 {
		t.Errorf("LastValue() = %d, want 20", e.LastValue())
	}
}

// TestControlEmitterSetterValidation verifies channel/controller bounds.
func TestControlEmitterSetterValidation(t *testing.T) {
	e, _ := NewControlEmitter(SenderFunc(func(Message) error { return nil }))

	for _, bad := range []int{0, -1, 17, 100} {
		if err := e.SetChannel(bad); err == nil {
			t.Errorf("SetChannel(%d) expected error", bad)
		}
	}

	for _, bad := range []int{-1, 128, 1000} {
		if err := e.SetController(bad); err == nil {
			t.Errorf("SetController(%d) expected error", bad)
		}
	}
}
