package queue

// Desk states.
const (
	StateIdle    = "idle"
	StateServing = "serving"
)

var transitionMap = map[string][]string{
	"call_next": {StateIdle, StateServing},
	"complete":  {StateServing},
	"skip":      {StateServing},
	"recall":    {StateServing},
	"announce":  {StateServing},
}

func ValidTransition(action, fromState string) bool {
	allowed, ok := transitionMap[action]
	if !ok {
		return false
	}
	for _, state := range allowed {
		if state == fromState {
			return true
		}
	}
	return false
}
