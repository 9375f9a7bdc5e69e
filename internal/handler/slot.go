package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/amitkrsingh19/parking-services/internal/model"
	"github.com/amitkrsingh19/parking-services/internal/repository"
)

// SlotHandler exposes slot CRUD and availability browsing.  Slots are
// created by the admin owning the station; availability flips only go
// through the booking engine, never through this handler.
type SlotHandler struct {
	Slots    *repository.SlotRepo
	Stations *repository.StationRepo
}

func NewSlotHandler(sl *repository.SlotRepo, st *repository.StationRepo) *SlotHandler {
	if sl == nil || st == nil {
		panic("nil repository passed to NewSlotHandler")
	}
	return &SlotHandler{Slots: sl, Stations: st}
}

type createSlotReq struct {
	StationID         uint64 `json:"station_id"`
	SlotNumber        uint32 `json:"slot_number"`
	SlotType          string `json:"slot_type"`
	PricePerHourCents uint32 `json:"price_per_hour_cents"`
}

type slotResp struct {
	ID                uint64 `json:"id"`
	StationID         uint64 `json:"station_id"`
	SlotNumber        uint32 `json:"slot_number"`
	SlotType          string `json:"slot_type"`
	PricePerHourCents uint32 `json:"price_per_hour_cents"`
	IsAvailable       bool   `json:"is_available"`
}

func toSlotResp(s model.Slot) slotResp {
	return slotResp{ID: s.ID, StationID: s.StationID, SlotNumber: s.SlotNumber, SlotType: s.SlotType, PricePerHourCents: s.PricePerHourCents, IsAvailable: s.IsAvailable}
}

func toSlotResps(slots []model.Slot) []slotResp {
	resp := make([]slotResp, 0, len(slots))
	for _, s := range slots {
		resp = append(resp, toSlotResp(s))
	}
	return resp
}

// Create adds a slot to the calling admin's station.  The station must
// exist and belong to the caller; the slot number must be unused within
// the station.
func (h *SlotHandler) Create(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createSlotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.SlotType = strings.ToLower(strings.TrimSpace(req.SlotType))
	if req.StationID == 0 || req.SlotNumber == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "station_id/slot_number required"})
	}
	if !model.ValidSlotType(req.SlotType) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slot_type must be car, bike or ev"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	st, err := h.Stations.GetByID(ctx, req.StationID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "station not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if st.OwnerID != adminID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "station belongs to another admin"})
	}

	s := model.Slot{
		StationID:         req.StationID,
		SlotNumber:        req.SlotNumber,
		SlotType:          req.SlotType,
		PricePerHourCents: req.PricePerHourCents,
		IsAvailable:       true,
		AdminID:           adminID,
	}
	if err := h.Slots.Create(ctx, &s); err != nil {
		if err == repository.ErrSlotNumberTaken {
			return c.JSON(http.StatusConflict, echo.Map{"error": "slot number already taken in this station"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create slot failed"})
	}
	return c.JSON(http.StatusCreated, toSlotResp(s))
}

// Get returns a slot by id.
func (h *SlotHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Slots.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toSlotResp(s))
}

// ListAvailable returns the currently available slots of a station with
// limit/offset pagination (?limit=&offset=, defaults 20/0).
func (h *SlotHandler) ListAvailable(c echo.Context) error {
	stationID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid station id"})
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	slots, err := h.Slots.ListAvailable(ctx, stationID, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": toSlotResps(slots)})
}

// ListByStation returns every slot of the calling admin's station,
// including unavailable ones.
func (h *SlotHandler) ListByStation(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	stationID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid station id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	st, err := h.Stations.GetByID(ctx, stationID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "station not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if getRole(c) != model.RoleSuperadmin && st.OwnerID != adminID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "station belongs to another admin"})
	}
	slots, err := h.Slots.ListByStation(ctx, stationID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": toSlotResps(slots)})
}

// Delete removes a slot owned by the calling admin.
func (h *SlotHandler) Delete(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Slots.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if getRole(c) != model.RoleSuperadmin && s.AdminID != adminID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "slot belongs to another admin"})
	}
	if err := h.Slots.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
