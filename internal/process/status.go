package process

// Status is the lifecycle state of one invocation.
type Status int

const (
	Ready Status = iota
	Running
	Complete
	Error
	TimedOut
)

func (s Status) String() string {
	switch s {
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Complete:
		return "complete"
	case Error:
		return "error"
	case TimedOut:
		return "timed out"
	default:
		return "unknown"
	}
}

func (s Status) Terminal() bool {
	return s == Complete || s == Error || s == TimedOut
}
