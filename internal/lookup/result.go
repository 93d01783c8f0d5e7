package lookup

import "fmt"

// Outcome classifies a single platform check.
type Outcome int

const (
	// Exists means the platform answered with anything but 404.
	Exists Outcome = iota
	NotFound
	// Failed means no HTTP response was received.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Exists:
		return "exists"
	case NotFound:
		return "not_found"
	case Failed:
		return "error"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

type Result struct {
	Username string
	Platform string
	URL      string

	Outcome    Outcome
	StatusCode int
	Err        error

	// Message is the human-readable status line shown to the user.
	Message string
}

func existsMessage(username, platform, url string) string {
	return fmt.Sprintf("%s exists on %s: %s", username, platform, url)
}

func notFoundMessage(username, platform string) string {
	return fmt.Sprintf("%s does not exist on %s.", username, platform)
}

func errorMessage(platform string, err error) string {
	return fmt.Sprintf("Error checking %s: %s", platform, err.Error())
}

// ResultSet holds one Result per requested platform, in registry order.
type ResultSet []Result

// Map returns the platform -> message mapping.
func (rs ResultSet) Map() map[string]string {
	out := make(map[string]string, len(rs))
	for _, r := range rs {
		out[r.Platform] = r.Message
	}
	return out
}

// Lines returns the messages in order.
func (rs ResultSet) Lines() []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Message
	}
	return out
}

func (rs ResultSet) Get(platform string) (Result, bool) {
	for _, r := range rs {
		if r.Platform == platform {
			return r, true
		}
	}
	return Result{}, false
}

// Count returns how many results have outcome o.
func (rs ResultSet) Count(o Outcome) int {
	n := 0
	for _, r := range rs {
		if r.Outcome == o {
			n++
		}
	}
	return n
}
