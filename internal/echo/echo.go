package echo

import (
	"net"
	"strconv"
	"time"
)

// Identity holds the immutable constants that distinguish one fixture
// from its sibling. Both values appear verbatim in every response.
type Identity struct {
	Name        string
	DisplayName string
	Host        string
	Port        int
}

// Addr returns the listen address for this fixture, e.g. "127.0.0.1:8000".
func (id Identity) Addr() string {
	return net.JoinHostPort(id.Host, strconv.Itoa(id.Port))
}

// getResponse is the body of every GET answer. Field order matters:
// consumers diff the serialized output against the reference fixtures.
type getResponse struct {
	Backend   string  `json:"backend"`
	Port      int     `json:"port"`
	Path      string  `json:"path"`
	Timestamp float64 `json:"timestamp"`
	Message   string  `json:"message"`
}

// postResponse additionally carries the received body, or null when the
// body was empty. received_data sits before message in the output.
type postResponse struct {
	Backend      string  `json:"backend"`
	Port         int     `json:"port"`
	Path         string  `json:"path"`
	Timestamp    float64 `json:"timestamp"`
	ReceivedData *string `json:"received_data"`
	Message      string  `json:"message"`
}

func epochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
