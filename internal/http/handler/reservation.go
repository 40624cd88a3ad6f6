package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"roomescape/internal/http/middleware"
	"roomescape/internal/model"
	"roomescape/internal/repository"
	"roomescape/internal/service"
)

// currentMember returns the id stored by middleware.Auth. A missing id means the route was
// registered without authentication.
func currentMember(c *fiber.Ctx) (int64, error) {
	id, ok := middleware.MemberID(c)
	if !ok {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return invalid("INVALID_BODY", "request body must be valid JSON")
	}
	return nil
}

// CreateReservation books a slot for the current member and confirms its payment.
func CreateReservation(svc service.ReservationService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		memberID, err := currentMember(c)
		if err != nil {
			return err
		}
		var req reservationRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, log, err)
		}
		slot, err := req.slotRequest.toInput()
		if err != nil {
			return respondError(c, log, err)
		}
		pay, err := req.paymentRequest.toInput()
		if err != nil {
			return respondError(c, log, err)
		}

		r, err := svc.SaveWithPayment(c.UserContext(), memberID, slot, pay)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(toReservationResponse(*r))
	}
}

// CreateWaiting puts the current member on the waitlist of a reserved slot.
func CreateWaiting(svc service.ReservationService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		memberID, err := currentMember(c)
		if err != nil {
			return err
		}
		var req slotRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, log, err)
		}
		slot, err := req.toInput()
		if err != nil {
			return respondError(c, log, err)
		}

		r, err := svc.SaveWaiting(c.UserContext(), memberID, slot)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(toReservationResponse(*r))
	}
}

// CancelMine cancels one of the current member's reservations or waiting entries.
func CancelMine(svc service.ReservationService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		memberID, err := currentMember(c)
		if err != nil {
			return err
		}
		id, err := parseID(c.Params("id"))
		if err != nil {
			return respondError(c, log, err)
		}
		if err := svc.CancelByMember(c.UserContext(), memberID, id); err != nil {
			return respondError(c, log, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ListMine returns the current member's entries with their waiting order.
func ListMine(svc service.ReservationService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		memberID, err := currentMember(c)
		if err != nil {
			return err
		}
		items, err := svc.ListMine(c.UserContext(), memberID)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(toMyReservationResponses(items))
	}
}

// GetReservation returns a reservation. Members only see their own; admins see any.
func GetReservation(svc service.ReservationService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		memberID, err := currentMember(c)
		if err != nil {
			return err
		}
		id, err := parseID(c.Params("id"))
		if err != nil {
			return respondError(c, log, err)
		}
		r, err := svc.FindByID(c.UserContext(), id)
		if err != nil {
			return respondError(c, log, err)
		}
		role, _ := c.Locals(middleware.MemberRoleLocalKey).(model.Role)
		if r.Member.ID != memberID && role != model.RoleAdmin {
			return respondError(c, log, service.ErrNotOwner)
		}
		return c.JSON(toReservationResponse(*r))
	}
}

// ApprovePayment pays for the current member's promoted waiting entry.
func ApprovePayment(svc service.ReservationService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		memberID, err := currentMember(c)
		if err != nil {
			return err
		}
		id, err := parseID(c.Params("id"))
		if err != nil {
			return respondError(c, log, err)
		}
		var req paymentRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, log, err)
		}
		pay, err := req.toInput()
		if err != nil {
			return respondError(c, log, err)
		}

		r, err := svc.ApprovePaymentWaiting(c.UserContext(), memberID, id, pay)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(toReservationResponse(*r))
	}
}

// GetReceipt returns a temporary download link for the payment receipt.
func GetReceipt(svc service.ReservationService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		memberID, err := currentMember(c)
		if err != nil {
			return err
		}
		id, err := parseID(c.Params("id"))
		if err != nil {
			return respondError(c, log, err)
		}
		u, err := svc.ReceiptURL(c.UserContext(), memberID, id)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(receiptResponse{URL: u})
	}
}

// AdminCreateReservation books a slot on behalf of a member without payment.
func AdminCreateReservation(svc service.ReservationService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req adminReservationRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, log, err)
		}
		if req.MemberID <= 0 {
			return respondError(c, log, invalid("INVALID_MEMBER_ID", "memberId must be a positive number"))
		}
		slot, err := req.slotRequest.toInput()
		if err != nil {
			return respondError(c, log, err)
		}

		r, err := svc.SaveByAdmin(c.UserContext(), req.MemberID, slot)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(toReservationResponse(*r))
	}
}

// AdminListByStatus lists reservations with the given status, RESERVATION by default.
func AdminListByStatus(svc service.ReservationService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status, ok := model.ParseStatus(c.Query("status", string(model.StatusReservation)))
		if !ok {
			return respondError(c, log, invalid("INVALID_STATUS", "status must be RESERVATION or WAITING"))
		}
		items, err := svc.ListByStatus(c.UserContext(), status)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(toReservationResponses(items))
	}
}

// AdminSearch filters reservations by theme, member and an inclusive date range.
func AdminSearch(svc service.ReservationService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var (
			crit repository.Criteria
			err  error
		)
		if crit.ThemeID, err = parseOptionalID(c.Query("themeId"), "themeId"); err != nil {
			return respondError(c, log, err)
		}
		if crit.MemberID, err = parseOptionalID(c.Query("memberId"), "memberId"); err != nil {
			return respondError(c, log, err)
		}
		if crit.DateFrom, err = parseOptionalDate(c.Query("dateFrom"), "dateFrom"); err != nil {
			return respondError(c, log, err)
		}
		if crit.DateTo, err = parseOptionalDate(c.Query("dateTo"), "dateTo"); err != nil {
			return respondError(c, log, err)
		}

		items, err := svc.ListByCriteria(c.UserContext(), crit)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(toReservationResponses(items))
	}
}

// AdminListCanceled lists the archive of canceled reservations.
func AdminListCanceled(svc service.ReservationService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.ListCanceled(c.UserContext())
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(toCanceledResponses(items))
	}
}

// AdminDelete cancels any reservation or waiting entry.
func AdminDelete(svc service.ReservationService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c.Params("id"))
		if err != nil {
			return respondError(c, log, err)
		}
		if err := svc.DeleteByID(c.UserContext(), id); err != nil {
			return respondError(c, log, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
