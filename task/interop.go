package task

// HostPromise is the minimal stand-in for "the host's promise type" this
// library adapts to/from at its boundary: the smallest Go-idiomatic
// analogue of a thenable, modeled on a channel-based promise-to-channel
// bridge rather than a full interop surface.
type HostPromise interface {
	// ToChannel returns a channel that receives exactly one HostOutcome once
	// the host promise settles, then is closed.
	ToChannel() <-chan HostOutcome
}

// HostOutcome is the (error, result) pair delivered across a HostPromise
// channel — exactly one of Err/Result is meaningful, mirroring the rest of
// this package's settle contract.
type HostOutcome struct {
	Err    any
	Result any
}

// ToPromiseLike consumes the receiver (it panics with *ConsumedError if
// already Consumed, like Map) and returns a HostPromise that settles once t
// does. Documented limitation: a host promise has no cancelation of its
// own, so canceling downstream consumers of the returned HostPromise cannot
// reach back to cancel t — only t.Deinit (called directly) can do that.
func (t *Task) ToPromiseLike() HostPromise {
	ch := make(chan HostOutcome, 1)
	t.Map(func(err, res any) (any, any) {
		ch <- HostOutcome{Err: err, Result: res}
		close(ch)
		return nil, nil
	})
	return &channelPromise{ch: ch}
}

type channelPromise struct {
	ch <-chan HostOutcome
}

func (p *channelPromise) ToChannel() <-chan HostOutcome { return p.ch }

// FromHostPromise adapts p into a Task: the task settles with whatever
// HostOutcome arrives on p's channel. Since a HostPromise cannot be canceled,
// deiniting the returned task before p settles only cancels the Task side
// of the adaptation (the descendant observes the deinit error); it cannot
// stop whatever produced p.
func FromHostPromise(sched *Scheduler, p HostPromise) *Task {
	t := New(sched)
	ch := p.ToChannel()
	go func() {
		outcome, ok := <-ch
		if !ok {
			return
		}
		t.scheduler.Post(func() {
			t.Settle(outcome.Err, outcome.Result)
		})
	}()
	return t
}
