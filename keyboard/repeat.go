package keyboard

import "time"

type repeatMsgKind int

const (
	repeatPress repeatMsgKind = iota
	repeatRelease
	repeatInfo
	repeatClear
)

type repeatMsg struct {
	kind  repeatMsgKind
	event Event
	code  uint32
	rate  int32
	delay int32
}

// Repeater resynthesizes key events for held keys at the rate the
// compositor announces in the keyboard's repeat_info event. Events it
// generates carry Repeated set and flow through the emit callback on the
// repeater's own goroutine.
type Repeater struct {
	msgs chan repeatMsg
	emit func(Event)
}

// NewRepeater starts the repeat worker. emit must be safe to call from
// another goroutine; it typically forwards into the session's event
// channel.
func NewRepeater(emit func(Event)) *Repeater {
	r := &Repeater{msgs: make(chan repeatMsg, 16), emit: emit}
	go r.run()
	return r
}

// SetInfo adopts the compositor's repeat parameters: rate in characters
// per second, delay in milliseconds before the first repeat. A rate of
// zero disables repeat.
func (r *Repeater) SetInfo(rate, delay int32) {
	r.msgs <- repeatMsg{kind: repeatInfo, rate: rate, delay: delay}
}

// KeyPressed offers a pressed key as the repeat candidate. Modifier and
// lock keys never repeat and cancel any running repeat instead, matching
// how a newly pressed key replaces the previous candidate.
func (r *Repeater) KeyPressed(ev Event) {
	r.msgs <- repeatMsg{kind: repeatPress, event: ev}
}

// KeyReleased cancels the repeat if the released keycode is the one
// repeating.
func (r *Repeater) KeyReleased(code uint32) {
	r.msgs <- repeatMsg{kind: repeatRelease, code: code}
}

// Clear cancels any running repeat, for keyboard focus loss: release
// events stop arriving once focus is gone.
func (r *Repeater) Clear() {
	r.msgs <- repeatMsg{kind: repeatClear}
}

// Stop shuts the worker down.
func (r *Repeater) Stop() { close(r.msgs) }

func (r *Repeater) run() {
	var (
		rate    int32 = 25
		delay   int32 = 600
		current *Event
	)
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	stopTimer := func() {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
	}

	for {
		select {
		case msg, ok := <-r.msgs:
			if !ok {
				return
			}
			switch msg.kind {
			case repeatPress:
				stopTimer()
				current = nil
				if rate > 0 && keysymRepeats(msg.event.Keysym) {
					ev := msg.event
					current = &ev
					timer.Reset(time.Duration(delay) * time.Millisecond)
				}
			case repeatRelease:
				if current != nil && current.Code == msg.code {
					stopTimer()
					current = nil
				}
			case repeatInfo:
				rate, delay = msg.rate, msg.delay
				if rate == 0 {
					stopTimer()
					current = nil
				}
			case repeatClear:
				stopTimer()
				current = nil
			}
		case <-timer.C:
			if current == nil || rate <= 0 {
				continue
			}
			ev := *current
			ev.Repeated = true
			r.emit(ev)
			timer.Reset(time.Second / time.Duration(rate))
		}
	}
}
