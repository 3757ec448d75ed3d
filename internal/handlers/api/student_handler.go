package api

import (
	"bytes"
	"errors"

	"github.com/edustack/campusaudit/internal/audit"
	"github.com/edustack/campusaudit/internal/students"
	"github.com/gofiber/fiber/v2"
)

type StudentHandler struct {
	studentService *students.StudentService
}

func NewStudentHandler(studentService *students.StudentService) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

func (h *StudentHandler) PostStudent(ctx *fiber.Ctx) error {
	var input students.CreateStudentInput
	if err := ctx.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	student, err := h.studentService.CreateStudent(ctx.Context(), input, actor(ctx), audit.RequestInfoFromCtx(ctx))
	if isValidationError(err) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(NewDataResponse(student))
}

func (h *StudentHandler) GetStudent(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid student id")
	}
	student, err := h.studentService.GetStudent(ctx.Context(), uint(id))
	if errors.Is(err, students.ErrStudentNotFound) {
		return fiber.ErrNotFound
	}
	if err != nil {
		return err
	}
	return ctx.JSON(NewDataResponse(student))
}

func (h *StudentHandler) DeleteStudent(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid student id")
	}
	err = h.studentService.DeleteStudent(ctx.Context(), uint(id), actor(ctx), audit.RequestInfoFromCtx(ctx))
	if errors.Is(err, students.ErrStudentNotFound) {
		return fiber.ErrNotFound
	}
	if err != nil {
		return err
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

// PostImport accepts either a multipart "file" field or a raw CSV body.
func (h *StudentHandler) PostImport(ctx *fiber.Ctx) error {
	var body []byte
	if fileHeader, err := ctx.FormFile("file"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cannot read uploaded file")
		}
		defer file.Close()
		buf := new(bytes.Buffer)
		if _, err := buf.ReadFrom(file); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cannot read uploaded file")
		}
		body = buf.Bytes()
	} else {
		body = ctx.Body()
	}

	result, err := h.studentService.BulkImport(ctx.Context(), bytes.NewReader(body), actor(ctx), audit.RequestInfoFromCtx(ctx))
	if errors.Is(err, students.ErrImportEmpty) || errors.Is(err, students.ErrImportTooLarge) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err != nil {
		return err
	}
	return ctx.JSON(NewDataResponse(result))
}

func isValidationError(err error) bool {
	return errors.Is(err, students.ErrAdmissionNoRequired) ||
		errors.Is(err, students.ErrFirstNameRequired) ||
		errors.Is(err, students.ErrInvalidPAN) ||
		errors.Is(err, students.ErrInvalidAadhaar)
}
