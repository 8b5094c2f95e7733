package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/harborchat/spotlight/pkg/httputil"
	"github.com/harborchat/spotlight/pkg/observability"
	"github.com/harborchat/spotlight/pkg/spotlight"
)

// rateLimitRetryAfter is the window length advertised to throttled callers.
const rateLimitRetryAfter = 100

// spotlightBody is the POST request payload.
type spotlightBody struct {
	Text      string   `json:"text"`
	Usernames []string `json:"usernames"`
	Type      *struct {
		Users bool `json:"users"`
		Rooms bool `json:"rooms"`
	} `json:"type"`
	RoomID string `json:"roomId"`
}

// handleSpotlight serves both forms of the search endpoint: GET with query
// parameters and POST with a JSON body.
func (s *Server) handleSpotlight(w http.ResponseWriter, r *http.Request) {
	req, ok := s.parseSpotlightRequest(w, r)
	if !ok {
		return
	}
	req.ActorID = observability.GetUserID(r.Context())

	result, err := s.searcher.Spotlight(r.Context(), req)
	if errors.Is(err, spotlight.ErrRateLimited) {
		w.Header().Set("Retry-After", strconv.Itoa(rateLimitRetryAfter))
		httputil.WriteTooManyRequests(w, "search rate limit exceeded")
		return
	}
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"error":      err.Error(),
			"request_id": observability.GetRequestID(r.Context()),
		}).Error("spotlight search failed")
		httputil.WriteInternalError(w, errors.New("search failed"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

func (s *Server) parseSpotlightRequest(w http.ResponseWriter, r *http.Request) (spotlight.Request, bool) {
	if r.Method == http.MethodPost {
		var body spotlightBody
		if !httputil.ParseJSONOrError(w, r, &body) {
			return spotlight.Request{}, false
		}
		req := spotlight.Request{
			Text:           body.Text,
			KnownUsernames: body.Usernames,
			RoomID:         body.RoomID,
			WantUsers:      true,
			WantRooms:      true,
		}
		if body.Type != nil {
			req.WantUsers = body.Type.Users
			req.WantRooms = body.Type.Rooms
		}
		return req, true
	}

	// "query" is kept as an alias for older clients.
	text := r.URL.Query().Get("text")
	if text == "" {
		text = r.URL.Query().Get("query")
	}
	return spotlight.Request{
		Text:           text,
		KnownUsernames: httputil.QueryStrings(r, "usernames"),
		RoomID:         r.URL.Query().Get("roomId"),
		WantUsers:      httputil.QueryBool(r, "users", true),
		WantRooms:      httputil.QueryBool(r, "rooms", true),
	}, true
}
