package inventory

import (
	"errors"
	"io"
	"log"
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/assetdesk/assetdesk/internal/model"
)

func fail(c *gin.Context, err error) {
	status, detail := StatusOf(err)
	if status == http.StatusInternalServerError {
		log.Printf("inventory: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, invalid("id: expected an integer"))
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string, def int) (int, bool) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		fail(c, invalid("%s: expected an integer", key))
		return 0, false
	}
	return n, true
}

func listParams(c *gin.Context, filters ...string) (model.ListParams, bool) {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return model.ListParams{}, false
	}
	size, ok := queryInt(c, "page_size", DefaultPageSize)
	if !ok {
		return model.ListParams{}, false
	}
	p := model.ListParams{Page: page, PageSize: size}
	for _, key := range filters {
		if v := c.Query(key); v != "" {
			if p.Filters == nil {
				p.Filters = map[string]string{}
			}
			p.Filters[key] = v
		}
	}
	return p, true
}

func payload(c *gin.Context) (map[string]any, bool) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, invalid("Invalid JSON body"))
		return nil, false
	}
	return body, true
}

// mountCollection serves list, get, create, update and delete for one
// flat resource.
func mountCollection[T any](g *gin.RouterGroup, coll model.Collection[T], filters ...string) {
	g.GET("", func(c *gin.Context) {
		params, ok := listParams(c, filters...)
		if !ok {
			return
		}
		res, err := coll.List(c.Request.Context(), params)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	})
	g.GET("/:id", func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		item, err := coll.Get(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	})
	g.POST("", func(c *gin.Context) {
		body, ok := payload(c)
		if !ok {
			return
		}
		item, err := coll.Create(c.Request.Context(), body)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	})
	g.PUT("/:id", func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		body, ok := payload(c)
		if !ok {
			return
		}
		item, err := coll.Update(c.Request.Context(), id, body)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	})
	g.DELETE("/:id", func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := coll.Delete(c.Request.Context(), id); err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}

func (s *Server) handleAssign(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var a model.Assignment
	if err := c.ShouldBindJSON(&a); err != nil {
		fail(c, invalid("Invalid JSON body"))
		return
	}
	asset, err := s.store.AssignAsset(c.Request.Context(), id, a)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, asset)
}

func (s *Server) handleReturn(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var body struct {
		Notes *string `json:"notes"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
			fail(c, invalid("Invalid JSON body"))
			return
		}
	}
	notes := ""
	if body.Notes != nil {
		notes = *body.Notes
	}
	asset, err := s.store.ReturnAsset(c.Request.Context(), id, notes)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, asset)
}

func (s *Server) handleQRCode(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	size, ok := queryInt(c, "size", DefaultQRSize)
	if !ok {
		return
	}
	border, ok := queryInt(c, "border", DefaultQRBorder)
	if !ok {
		return
	}
	asset, err := s.store.Assets().Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	png, err := s.store.QRCode(c.Request.Context(), id, size, border)
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", "inline; filename=asset_"+asset.AssetTag+"_qr.png")
	c.Data(http.StatusOK, "image/png", png)
}

func (s *Server) handleListAttachments(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	out, err := s.store.Attachments(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleUpload(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		fail(c, invalid("file: field required"))
		return
	}
	if fh.Size > MaxUploadSize {
		fail(c, &DetailError{Kind: ErrTooLarge, Detail: "File too large. Max size: " + strconv.Itoa(MaxUploadSize) + " bytes"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, MaxUploadSize+1))
	if err != nil {
		fail(c, err)
		return
	}

	att, err := s.store.SaveAttachment(c.Request.Context(), id, fh.Filename, fh.Header.Get("Content-Type"), data)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, att)
}

func (s *Server) handleDownload(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	att, err := s.store.Attachment(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	data, err := s.store.DownloadAttachment(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": att.OriginalFilename}))
	c.Data(http.StatusOK, att.MimeType, data)
}

func (s *Server) handleDeleteAttachment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.store.DeleteAttachment(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleDepreciationHistory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	out, err := s.store.DepreciationHistory(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleCalculateDepreciation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var body struct {
		PeriodStart string `json:"period_start"`
		PeriodEnd   string `json:"period_end"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, invalid("Invalid JSON body"))
		return
	}
	switch {
	case body.PeriodStart == "":
		fail(c, invalid("period_start: field required"))
		return
	case body.PeriodEnd == "":
		fail(c, invalid("period_end: field required"))
		return
	}
	entry, err := s.store.CalculateDepreciation(c.Request.Context(), id, body.PeriodStart, body.PeriodEnd)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (s *Server) handleDepreciationReport(c *gin.Context) {
	out, err := s.store.DepreciationReport(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleUpcoming(c *gin.Context) {
	days, ok := queryInt(c, "days", model.DefaultUpcomingDays)
	if !ok {
		return
	}
	if days < 1 {
		fail(c, invalid("days: must be between 1 and %d", MaxUpcomingDays))
		return
	}
	out, err := s.store.UpcomingMaintenance(c.Request.Context(), days)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleListRecords(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	params, ok := listParams(c)
	if !ok {
		return
	}
	res, err := s.store.MaintenanceRecords(c.Request.Context(), id, params)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleCreateRecord(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	body, ok := payload(c)
	if !ok {
		return
	}
	rec, err := s.store.CreateMaintenanceRecord(c.Request.Context(), id, body)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (s *Server) handleGetRecord(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	rec, err := s.store.MaintenanceRecord(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleUpdateRecord(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	body, ok := payload(c)
	if !ok {
		return
	}
	rec, err := s.store.UpdateMaintenanceRecord(c.Request.Context(), id, body)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleDeleteRecord(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.store.DeleteMaintenanceRecord(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleListSchedules(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	out, err := s.store.Schedules(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleCreateSchedule(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	body, ok := payload(c)
	if !ok {
		return
	}
	sc, err := s.store.CreateSchedule(c.Request.Context(), id, body)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sc)
}

func (s *Server) handleUpdateSchedule(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	body, ok := payload(c)
	if !ok {
		return
	}
	sc, err := s.store.UpdateSchedule(c.Request.Context(), id, body)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sc)
}

func (s *Server) handleDeleteSchedule(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.store.DeleteSchedule(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
