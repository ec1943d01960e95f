// FilePath: api/resources/resources.go
package resources

import (
	"net/http"
	"reflect"
	"time"

	"github.com/gorilla/schema"
	"github.com/itsatony/misting-hub/internal/hubservice"
)

// Resources holds all HTTP resource handlers
type Resources struct {
	State       *StateHandlers
	Readings    *ReadingHandlers
	Events      *EventHandlers
	Control     *ControlHandlers
	HealthCheck func(w http.ResponseWriter, r *http.Request)
	Metrics     func(w http.ResponseWriter, r *http.Request)
}

// NewResources creates a new Resources instance
func NewResources(svc *hubservice.HubService) *Resources {
	return &Resources{
		State:    &StateHandlers{hubservice: svc},
		Readings: &ReadingHandlers{hubservice: svc},
		Events:   &EventHandlers{hubservice: svc},
		Control:  &ControlHandlers{hubservice: svc},
	}
}

// SetHealthCheck sets the health check handler
func (r *Resources) SetHealthCheck(h func(w http.ResponseWriter, r *http.Request)) {
	r.HealthCheck = h
}

// SetMetrics sets the metrics handler
func (r *Resources) SetMetrics(h func(w http.ResponseWriter, r *http.Request)) {
	r.Metrics = h
}

// queryDecoder decodes URL query parameters into filter structs.
var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	d.RegisterConverter(time.Time{}, func(value string) reflect.Value {
		parsed, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return reflect.Value{}
		}
		return reflect.ValueOf(parsed)
	})
	return d
}
