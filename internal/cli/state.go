package cli

// ViewState is what the transaction list currently shows. A load always
// ends in Ready, Empty or Failed.
type ViewState int

const (
	StateLoading ViewState = iota
	StateReady
	StateEmpty
	StateFailed
)

func (s ViewState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateEmpty:
		return "empty"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
