package server

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"socialfeed/internal/middleware"
	"socialfeed/internal/models"
	"socialfeed/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// The error message is derived from the parameter name (e.g. "id" -> "Invalid ID",
// "postId" -> "Invalid post ID").
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// parseBody decodes the request body into out and validates it. An empty
// body leaves out untouched before validation.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(out); err != nil {
			return models.NewValidationError("Invalid request body")
		}
	}
	if err := validation.ValidateStruct(out); err != nil {
		var ve *validation.RequestValidationError
		if errors.As(err, &ve) {
			return ve.AppError()
		}
		return models.NewValidationError(err.Error())
	}
	return nil
}

// actingUser returns the authenticated user. A user_id sent in the body is
// accepted only when it names that same user.
func actingUser(c *fiber.Ctx, bodyUserID flexID) (uint, error) {
	userID, ok := middleware.UserIDFromLocals(c)
	if !ok {
		return 0, models.NewUnauthorizedError("Access denied. No token provided")
	}
	if bodyUserID != 0 && uint(bodyUserID) != userID {
		return 0, models.NewForbiddenError("user_id does not match the authenticated user")
	}
	return userID, nil
}

// respondError writes err through the shared status mapping and logs
// anything that maps to a 5xx.
func respondError(c *fiber.Ctx, err error) error {
	if status := models.HTTPStatus(err); status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request error",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()))
	}
	return models.RespondWithAppError(c, err)
}

// flexID is an id that clients send either as a JSON number or a string.
// Zero means absent. Values must fit a signed 64-bit column.
type flexID uint

func (f *flexID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		s = ""
	}
	return f.UnmarshalText([]byte(s))
}

func (f *flexID) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseUint(s, 10, 63)
	if err != nil {
		return fmt.Errorf("invalid id %q", s)
	}
	*f = flexID(n)
	return nil
}
