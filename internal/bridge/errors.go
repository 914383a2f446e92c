package bridge

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrUnknownMethod is returned by Handle for unrecognized method names.
var ErrUnknownMethod = errors.New("unknown method")

// ParamsError reports a payload that could not be decoded or failed
// validation. It is a protocol error, not part of the lifecycle taxonomy.
type ParamsError struct {
	Method string
	Err    error
}

func (e *ParamsError) Error() string {
	return fmt.Sprintf("invalid params for %s: %v", e.Method, e.Err)
}

func (e *ParamsError) Unwrap() error {
	return e.Err
}

// Fields lists offending payload fields by their JSON path.
func (e *ParamsError) Fields() []string {
	var verrs validator.ValidationErrors
	if !errors.As(e.Err, &verrs) {
		return nil
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, jsonPath(fe.Namespace()))
	}
	return fields
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, fmt.Sprintf("%s failed %s", jsonPath(fe.Namespace()), rule))
	}
	return fmt.Errorf("%s: %w", strings.Join(parts, "; "), err)
}

// jsonPath drops the root struct name from a validator namespace.
func jsonPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
