package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kweller/go-prodcat/catalog"
)

func (s *Server) handleCreate(c *gin.Context) {
	var in catalog.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.writeError(c, &catalog.ValidationError{Field: "body", Reason: err.Error()})
		return
	}

	p, err := s.catalog.Create(c.Request.Context(), in)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toResponse(p))
}

func (s *Server) handleList(c *gin.Context) {
	products, err := s.catalog.List(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}

	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toResponse(p))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleGet(c *gin.Context) {
	id, ok := s.recordID(c)
	if !ok {
		return
	}

	p, err := s.catalog.Get(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(p))
}

func (s *Server) handleUpdate(c *gin.Context) {
	id, ok := s.recordID(c)
	if !ok {
		return
	}

	var in catalog.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.writeError(c, &catalog.ValidationError{Field: "body", Reason: err.Error()})
		return
	}

	p, err := s.catalog.Update(c.Request.Context(), id, in)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(p))
}

func (s *Server) handleDelete(c *gin.Context) {
	id, ok := s.recordID(c)
	if !ok {
		return
	}

	if err := s.catalog.Delete(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// searchHandler builds the handler for one vector-field search route. The
// query parameter carrying the input is named after the source field;
// numeric fields additionally require the input to parse as a non-negative
// integer before anything is embedded.
func (s *Server) searchHandler(field catalog.VectorField, param string, numeric bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		input := strings.TrimSpace(c.Query(param))
		if input == "" {
			s.writeError(c, &catalog.ValidationError{Field: param, Reason: "query parameter is required"})
			return
		}
		if numeric {
			n, err := strconv.Atoi(input)
			if err != nil || n < 0 {
				s.writeError(c, &catalog.ValidationError{Field: param, Reason: "must be a non-negative integer"})
				return
			}
			input = strconv.Itoa(n)
		}

		top := catalog.DefaultTop
		if raw := c.Query("top"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				s.writeError(c, &catalog.ValidationError{Field: "top", Reason: "must be an integer"})
				return
			}
			top = n
		}

		matches, err := s.catalog.Search(c.Request.Context(), field, input, top)
		if err != nil {
			s.writeError(c, err)
			return
		}

		out := make([]searchResponse, 0, len(matches))
		for _, m := range matches {
			out = append(out, searchResponse{
				productResponse: toResponse(m.Product),
				SimilarityScore: m.Score,
			})
		}
		c.JSON(http.StatusOK, out)
	}
}

// recordID validates the path id before any store round-trip. A malformed
// id is a client error, not a lookup miss.
func (s *Server) recordID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		s.writeError(c, &catalog.ValidationError{Field: "id", Reason: "must be a valid UUID"})
		return "", false
	}
	return id, true
}
