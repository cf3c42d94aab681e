package shared

import (
	"net/http"

	"spoolman/internal/pubsub"
	"spoolman/internal/stream"
	"spoolman/pkg/platform/httputil"
)

// Streamer serves websocket upgrades on a route and falls through to next
// for plain requests.
type Streamer interface {
	Upgrading(topic stream.TopicFunc, next http.HandlerFunc) http.HandlerFunc
}

// Stream wraps next with s, or returns next unchanged when s is nil.
func Stream(s Streamer, topic stream.TopicFunc, next http.HandlerFunc) http.HandlerFunc {
	if s == nil {
		return next
	}
	return s.Upgrading(topic, next)
}

// CollectionTopic subscribes to every change of resource.
func CollectionTopic(resource string) stream.TopicFunc {
	return func(*http.Request) (pubsub.Topic, error) {
		return pubsub.NewTopic(resource)
	}
}

// ItemTopic subscribes to changes of the entity named by the id route
// parameter.
func ItemTopic(resource string) stream.TopicFunc {
	return func(r *http.Request) (pubsub.Topic, error) {
		id, err := ParseID(r, "id")
		if err != nil {
			return pubsub.Topic{}, err
		}
		return pubsub.ItemTopic(resource, id)
	}
}

// Deleted writes the confirmation body of delete endpoints.
func Deleted(w http.ResponseWriter, message string) {
	httputil.WriteJSON(w, http.StatusOK, httputil.MessageResponse{Message: message})
}
