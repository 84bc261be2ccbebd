package restengine

import (
	"time"

	jsoniter "github.com/json-iterator/go"
)

// ItemsBody is the payload of GET and PUT /api/{resource}.
type ItemsBody struct {
	Items jsoniter.RawMessage `json:"items"`
}

// CommitBody is the payload of POST /api/commit.
type CommitBody struct {
	CommitID    string         `json:"commitId"`
	Operation   string         `json:"operation"`
	CommittedAt time.Time      `json:"committedAt"`
	Changes     []CommitChange `json:"changes"`
}

// CommitChange is one guarded collection replacement inside a CommitBody.
// With Guard set it only asserts ExpectedVersion and carries no items.
type CommitChange struct {
	Resource        string              `json:"resource"`
	ExpectedVersion uint64              `json:"expectedVersion"`
	Items           jsoniter.RawMessage `json:"items,omitempty"`
	Guard           bool                `json:"guard,omitempty"`
}

// ErrorBody is what the shim returns for non-2xx replies.
type ErrorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary
