package polo

import "fmt"

// Future holds the outcome of one API call started with Async.
type Future struct {
	done chan struct{}
	res  Response
	err  error
}

// Async runs fn on its own goroutine and returns immediately.
func Async(fn func() (Response, error)) *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.res, f.err = Response{}, ExError{Code: UnHandleError, Message: fmt.Sprint(r)}
			}
		}()
		f.res, f.err = fn()
	}()
	return f
}

// Done is closed once the outcome is available.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Get blocks until the call finishes.
func (f *Future) Get() (Response, error) {
	<-f.done
	return f.res, f.err
}

// OnComplete is the completion-style adapter: cb receives the same outcome Get
// returns, once per registration, on a separate goroutine.
func (f *Future) OnComplete(cb func(err error, res Response)) {
	if cb == nil {
		return
	}
	go func() {
		res, err := f.Get()
		cb(err, res)
	}()
}
