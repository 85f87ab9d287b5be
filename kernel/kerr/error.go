package kerr

import (
	"fmt"
	"log/slog"
)

type Errors struct {
	errs []KernelError
}

func (r *Errors) With(err ...KernelError) *Errors {
	if r == nil {
		return &Errors{errs: err}
	}
	for _, err := range err {
		r.errs = append(r.errs, err)
	}
	return r
}

func (r *Errors) Merge(err *Errors) *Errors {
	if r == nil {
		return err
	}
	if err == nil {
		return r
	}
	if len(err.errs) == 0 {
		return r
	}
	return r.With(err.errs...)
}

func (r *Errors) Errors() []KernelError {
	if r == nil {
		return nil
	}
	return r.errs
}

func (r *Errors) HasError() bool {
	if r == nil {
		return false
	}
	return len(r.errs) > 0
}

// IncompleteOnly reports whether every accumulated error is a syntax
// error caused by running out of input. Used to decide whether a
// partial declaration should be continued rather than rejected.
func (r *Errors) IncompleteOnly() bool {
	if !r.HasError() {
		return false
	}
	for _, e := range r.errs {
		if !IsIncomplete(e) {
			return false
		}
	}
	return true
}

func (r *Errors) LogValue() slog.Value {
	var vals []slog.Attr
	for i, v := range r.errs {
		vals = append(vals, slog.Attr{
			Key: fmt.Sprint("e", i),
			Value: slog.GroupValue(
				slog.Attr{
					Key:   "msg",
					Value: slog.StringValue(FormatWithCode(v)),
				},
			),
		})
	}
	return slog.GroupValue(vals...)
}
