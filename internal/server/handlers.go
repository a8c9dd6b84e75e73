package server

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/docsift/docsift/internal/common"
	"github.com/docsift/docsift/internal/entity"
	"github.com/docsift/docsift/internal/ingest"
	"github.com/docsift/docsift/internal/jobstore"
)

type processRequest struct {
	FileName string         `json:"file_name"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

type batchDocument struct {
	FileName string         `json:"file_name"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

type batchRequest struct {
	Documents []batchDocument `json:"documents"`
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}

func (s *Server) handleProcessDocument(c *fiber.Ctx) error {
	var req processRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	if req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "text is required"})
	}

	res := s.processor.Process(req.Text, req.Metadata)

	name := req.FileName
	if name == "" {
		name = "document-" + res.ID.String()[:8]
	}
	rec := jobstore.Record{
		ID:        res.ID,
		FileName:  name,
		Result:    *res,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.SaveRecord(c.Context(), rec); err != nil {
		s.logger.Error("server.save_record failed", "doc_id", res.ID, "error", err)
	}

	return c.JSON(res)
}

func (s *Server) handleSubmitBatch(c *fiber.Ctx) error {
	var req batchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	if len(req.Documents) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "documents are required"})
	}
	for _, d := range req.Documents {
		if d.Text == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "every document needs text"})
		}
	}

	job, err := s.store.CreateJob(c.Context(), len(req.Documents))
	if err != nil {
		s.logger.Error("server.create_job failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create job"})
	}

	docs := make([]ingest.Document, 0, len(req.Documents))
	for _, d := range req.Documents {
		name := d.FileName
		if name == "" {
			name = "document-" + uuid.NewString()[:8]
		}
		docs = append(docs, ingest.Document{
			FileName: name,
			Text:     d.Text,
			Metadata: d.Metadata,
		})
	}

	// The request context dies with the response; the batch keeps running.
	go func() {
		if err := s.runner.Run(context.Background(), job, docs); err != nil {
			s.logger.Error("server.batch failed", "job_id", job.ID, "error", err)
		}
	}()

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"job_id":      job.ID,
		"status":      job.Status,
		"total_files": job.TotalFiles,
	})
}

func (s *Server) handleBatchStatus(c *fiber.Ctx) error {
	job, err := s.getJob(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"job_id":      job.ID,
		"status":      job.Status,
		"total_files": job.TotalFiles,
		"processed":   job.Processed,
		"progress":    job.Progress,
		"created_at":  job.CreatedAt,
		"updated_at":  job.UpdatedAt,
	})
}

func (s *Server) handleBatchResults(c *fiber.Ctx) error {
	job, err := s.getJob(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"job_id":  job.ID,
		"status":  job.Status,
		"results": job.Results,
		"errors":  job.Errors,
	})
}

// getJob resolves the :id path parameter to a job. Failures come back as a
// *fiber.Error so callers never see a nil job with a nil error.
func (s *Server) getJob(c *fiber.Ctx) (*entity.BatchJob, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid job id")
	}
	job, err := s.store.GetJob(c.Context(), id)
	if errors.Is(err, common.ErrNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "job not found")
	}
	if err != nil {
		s.logger.Error("server.get_job failed", "job_id", id, "error", err)
		return nil, fiber.NewError(fiber.StatusInternalServerError, "failed to get job")
	}
	return job, nil
}

func (s *Server) handleExportRecords(c *fiber.Ctx) error {
	from, err := parseDateQuery(c.Query("from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid from date, want YYYY-MM-DD"})
	}
	to, err := parseDateQuery(c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid to date, want YYYY-MM-DD"})
	}

	b, err := s.exporter.ExportRecordsXLSX(c.Context(), from, to)
	if err != nil {
		s.logger.Error("server.export failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "export failed"})
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", `attachment; filename="documents.xlsx"`)
	return c.Send(b)
}

func parseDateQuery(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
