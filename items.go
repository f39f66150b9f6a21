package main

import (
	"context"
	"errors"
	"net/http"

	"adminpanel/pkg/notify"
	"adminpanel/pkg/records"

	"github.com/gin-gonic/gin"
)

func (a *app) listItemsHandler(c *gin.Context) {
	items, err := a.records.ListAll(c.Request.Context())
	a.metrics.recordOps.WithLabelValues("list", outcome(err)).Inc()
	if err != nil {
		a.log.Error(c.Request.Context(), "list records", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (a *app) createItemHandler(c *gin.Context) {
	var req records.Fields
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	rec, err := a.records.Create(ctx, req)
	a.metrics.recordOps.WithLabelValues("create", outcome(err)).Inc()
	if err != nil {
		a.storeError(c, "create", err)
		return
	}
	a.publish(ctx, notify.EventCreated, notify.RecordPayload{Student: rec})
	c.JSON(http.StatusOK, rec)
}

func (a *app) updateItemHandler(c *gin.Context) {
	var req records.Fields
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	rec, err := a.records.UpdateByID(ctx, c.Param("id"), req)
	a.metrics.recordOps.WithLabelValues("update", outcome(err)).Inc()
	if err != nil {
		a.storeError(c, "update", err)
		return
	}
	a.publish(ctx, notify.EventUpdated, notify.RecordPayload{Student: rec})
	c.JSON(http.StatusOK, rec)
}

func (a *app) deleteItemHandler(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()
	err := a.records.DeleteByID(ctx, id)
	a.metrics.recordOps.WithLabelValues("delete", outcome(err)).Inc()
	if err != nil {
		a.storeError(c, "delete", err)
		return
	}
	a.publish(ctx, notify.EventDeleted, notify.DeletePayload{ID: id})
	c.JSON(http.StatusOK, gin.H{"message": "Student deleted successfully"})
}

func (a *app) storeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, records.ErrMissingField):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, records.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		a.log.Error(c.Request.Context(), op+" record", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// publish announces a committed change. Failures are logged and counted; the
// mutation stands.
func (a *app) publish(ctx context.Context, event string, payload any) {
	if err := a.notifier.Publish(ctx, notify.StudentsChannel, event, payload); err != nil {
		a.metrics.notifyFailures.WithLabelValues(event).Inc()
		a.log.Warn(ctx, "notify failed", "event", event, "err", err)
	}
}
