package app

import (
	"github.com/louisbranch/crowdcue/internal/auth"
	"github.com/louisbranch/crowdcue/internal/party/event"
	apperrors "github.com/louisbranch/crowdcue/internal/platform/errors"
)

// CheckWritePolicy enforces role-based write restrictions before an event
// reaches the log. The reducer stays role-agnostic; this is the only place
// roles are consulted. Guests may not create parties or drive playback.
func CheckWritePolicy(role auth.Role, evt event.Event) error {
	if evt == nil {
		return apperrors.New(apperrors.CodeEventInvalid, "event is required")
	}
	switch evt.EventType() {
	case event.TypeCreated, event.TypePlaybackChanged:
		if role != auth.RoleHost {
			return apperrors.WithMetadata(apperrors.CodePolicyForbidden,
				"event kind is restricted to the host",
				map[string]string{"event_type": string(evt.EventType()), "role": string(role)})
		}
	}
	return nil
}
