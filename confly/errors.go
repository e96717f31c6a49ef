package confly

import "errors"

// Error taxonomy. Fatal errors abort before any parallel work begins;
// per-cube errors are reported and the remaining cubes proceed.
var (
	ErrConfigMissingOrMalformed = errors.New("confly: configuration missing or malformed")
	ErrMicroRead                = errors.New("confly: microdata read error")
	ErrPTableRead               = errors.New("confly: ptable read error")
	ErrSchemaMismatch           = errors.New("confly: record does not match schema")
	ErrTotalCodeCollision       = errors.New("confly: legitimate value collides with its type's total code")
	ErrOutputWrite              = errors.New("confly: output write error")
	ErrWorkerUnreachable        = errors.New("confly: worker unreachable")
	ErrCubeRead                 = errors.New("confly: cube read error")
)
