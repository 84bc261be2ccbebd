package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/ledgerstore"
	"github.com/AntonStoeckl/library-circulation-go/ledgerstore/restengine"
)

const headerConsistency = "X-Consistency"

func (s *Server) resourceParam(c *gin.Context) (ledgerstore.Resource, bool) {
	resource, err := ledgerstore.ParseResource(c.Param("resource"))
	if err != nil {
		abortWithError(c, http.StatusNotFound, err.Error(), string(core.NotFound))
		return "", false
	}

	return resource, true
}

func (s *Server) loadResource(c *gin.Context) {
	resource, ok := s.resourceParam(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if c.GetHeader(headerConsistency) == ledgerstore.EventualConsistency.String() {
		ctx = ledgerstore.WithEventualConsistency(ctx)
	}

	snapshot, err := s.store.Load(ctx, resource)
	if err != nil {
		s.storeFailure(c, err)
		return
	}

	payload, err := jsonAPI.Marshal(restengine.ItemsBody{Items: snapshot.ItemsJSON})
	if err != nil {
		s.storeFailure(c, err)
		return
	}

	c.Header("ETag", restengine.FormatETag(snapshot.Version))
	c.Data(http.StatusOK, "application/json", payload)
}

// saveResource replaces a collection. With If-Match the write becomes a guarded commit.
func (s *Server) saveResource(c *gin.Context) {
	resource, ok := s.resourceParam(c)
	if !ok {
		return
	}

	var body restengine.ItemsBody
	if err := jsonAPI.NewDecoder(c.Request.Body).Decode(&body); err != nil {
		abortWithError(c, http.StatusBadRequest, "malformed json body", string(core.ValidationError))
		return
	}

	if err := ledgerstore.ValidateItemsJSON(body.Items); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error(), string(core.ValidationError))
		return
	}

	ctx := c.Request.Context()

	ifMatch := c.GetHeader("If-Match")
	if ifMatch == "" {
		if err := s.store.Save(ctx, resource, body.Items); err != nil {
			s.storeFailure(c, err)
			return
		}

		c.Status(http.StatusNoContent)

		return
	}

	expected, err := restengine.ParseETag(ifMatch)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error(), string(core.ValidationError))
		return
	}

	change, err := ledgerstore.BuildChange(resource, expected, body.Items)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error(), string(core.ValidationError))
		return
	}

	if err = s.store.Commit(ctx, ledgerstore.BuildCommitMeta("put_"+resource.String()), change); err != nil {
		if errors.Is(err, ledgerstore.ErrConcurrencyConflict) {
			abortWithError(c, http.StatusPreconditionFailed, err.Error(), "")
			return
		}

		s.storeFailure(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}

// commit applies all changes or none. A stale expected version answers 409.
func (s *Server) commit(c *gin.Context) {
	var body restengine.CommitBody
	if err := jsonAPI.NewDecoder(c.Request.Body).Decode(&body); err != nil {
		abortWithError(c, http.StatusBadRequest, "malformed json body", string(core.ValidationError))
		return
	}

	meta, changes, err := s.commitFromBody(body)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error(), string(core.ValidationError))
		return
	}

	if err = s.store.Commit(c.Request.Context(), meta, changes...); err != nil {
		if errors.Is(err, ledgerstore.ErrConcurrencyConflict) {
			abortWithError(c, http.StatusConflict, err.Error(), "")
			return
		}

		s.storeFailure(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) commitFromBody(body restengine.CommitBody) (ledgerstore.CommitMeta, []ledgerstore.Change, error) {
	meta := ledgerstore.BuildCommitMeta(body.Operation)

	if body.CommitID != "" {
		id, err := uuid.Parse(body.CommitID)
		if err != nil {
			return ledgerstore.CommitMeta{}, nil, err
		}
		meta.CommitID = id
	}

	if !body.CommittedAt.IsZero() {
		meta.CommittedAt = body.CommittedAt
	}

	changes := make([]ledgerstore.Change, 0, len(body.Changes))
	for _, bc := range body.Changes {
		resource, err := ledgerstore.ParseResource(bc.Resource)
		if err != nil {
			return ledgerstore.CommitMeta{}, nil, err
		}

		var change ledgerstore.Change
		if bc.Guard {
			change, err = ledgerstore.BuildGuard(resource, bc.ExpectedVersion)
		} else {
			change, err = ledgerstore.BuildChange(resource, bc.ExpectedVersion, bc.Items)
		}

		if err != nil {
			return ledgerstore.CommitMeta{}, nil, err
		}

		changes = append(changes, change)
	}

	if err := ledgerstore.ValidateChanges(changes); err != nil {
		return ledgerstore.CommitMeta{}, nil, err
	}

	return meta, changes, nil
}

func (s *Server) storeFailure(c *gin.Context, err error) {
	if s.logger != nil {
		s.logger.ErrorContext(c.Request.Context(), "ledger store failed",
			"path", c.FullPath(), "error", err.Error(), ctxKeyRequestID, c.GetString(ctxKeyRequestID))
	}

	abortWithError(c, http.StatusServiceUnavailable, "ledger store unavailable", "")
}
