package inbound

import (
	"github.com/shandysiswandi/textotp/internal/pkg/router"
	"github.com/shandysiswandi/textotp/internal/smsotp/usecase"
)

// HTTPEndpoint exposes HTTP handlers for SMS device enrollment and the
// challenge/verify token flow.
type HTTPEndpoint struct {
	uc uc
}

// DeviceEnroll registers a new SMS device for the authenticated user.
// @Summary Enroll SMS device
// @Description Registers a phone number as a second factor. A random secret key is generated unless one is supplied.
// @Tags SMSOTP, Devices
// @Accept json
// @Produce json
// @Param request body DeviceEnrollRequest true "Enrollment payload"
// @Success 200 {object} router.successResponse{data=DeviceEnrollResponse} "Enrolled device"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/smsotp/devices [post]
func (h *HTTPEndpoint) DeviceEnroll(r *router.Request) (any, error) {
	var req DeviceEnrollRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.DeviceEnroll(r.Context(), usecase.DeviceEnrollInput{
		Number: req.Number,
		Key:    req.Key,
	})
	if err != nil {
		return nil, err
	}

	return DeviceEnrollResponse{ID: resp.ID, Number: resp.Number}, nil
}

// DeviceList returns the devices enrolled by the authenticated user.
// @Summary List SMS devices
// @Description Lists every SMS device belonging to the authenticated user.
// @Tags SMSOTP, Devices
// @Produce json
// @Success 200 {object} router.successResponse{data=DeviceListResponse} "Enrolled devices"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/smsotp/devices [get]
func (h *HTTPEndpoint) DeviceList(r *router.Request) (any, error) {
	resp, err := h.uc.DeviceList(r.Context())
	if err != nil {
		return nil, err
	}

	devices := make([]DeviceResponse, 0, len(resp.Devices))
	for _, d := range resp.Devices {
		devices = append(devices, DeviceResponse{
			ID:        d.ID,
			Number:    d.Number,
			Confirmed: d.Confirmed,
			CreatedAt: d.CreatedAt,
			UpdatedAt: d.UpdatedAt,
		})
	}

	return DeviceListResponse{Devices: devices}, nil
}

// DeviceDetail returns one device owned by the authenticated user.
// @Summary Get SMS device
// @Description Returns a single SMS device. Devices owned by other users are reported as not found.
// @Tags SMSOTP, Devices
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} router.successResponse{data=DeviceDetailResponse} "Device"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 404 {object} router.errorResponse "Device not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/smsotp/devices/{id} [get]
func (h *HTTPEndpoint) DeviceDetail(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.DeviceDetail(r.Context(), usecase.DeviceDetailInput{DeviceID: id})
	if err != nil {
		return nil, err
	}

	return DeviceDetailResponse{Device: DeviceResponse{
		ID:        resp.Device.ID,
		Number:    resp.Device.Number,
		Confirmed: resp.Device.Confirmed,
		CreatedAt: resp.Device.CreatedAt,
		UpdatedAt: resp.Device.UpdatedAt,
	}}, nil
}

// DeviceUpdate edits a device's number or key.
// @Summary Update SMS device
// @Description Changes the phone number or secret key of a device. Omitted fields are left untouched.
// @Tags SMSOTP, Devices
// @Accept json
// @Produce json
// @Param id path string true "Device ID"
// @Param request body DeviceUpdateRequest true "Update payload"
// @Success 200 {object} router.successResponse "Device updated"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 404 {object} router.errorResponse "Device not found"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/smsotp/devices/{id} [patch]
func (h *HTTPEndpoint) DeviceUpdate(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req DeviceUpdateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.DeviceUpdate(r.Context(), usecase.DeviceUpdateInput{
		DeviceID: id,
		Number:   req.Number,
		Key:      req.Key,
	}); err != nil {
		return nil, err
	}

	return DeviceUpdateResponse{}, nil
}

// DeviceDelete removes a device enrollment.
// @Summary Delete SMS device
// @Description Removes a device so it can no longer be used as a second factor.
// @Tags SMSOTP, Devices
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} router.successResponse "Device deleted"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 404 {object} router.errorResponse "Device not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/smsotp/devices/{id} [delete]
func (h *HTTPEndpoint) DeviceDelete(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	if err := h.uc.DeviceDelete(r.Context(), usecase.DeviceDeleteInput{DeviceID: id}); err != nil {
		return nil, err
	}

	return DeviceDeleteResponse{}, nil
}

// ChallengeCreate sends the current token to the device by SMS.
// @Summary Send token challenge
// @Description Derives the current token for the device and delivers it by SMS, returning an acknowledgment message.
// @Tags SMSOTP, Tokens
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} router.successResponse{data=ChallengeResponse} "Challenge sent"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 404 {object} router.errorResponse "Device not found"
// @Failure 429 {object} router.errorResponse "A token was sent recently"
// @Failure 500 {object} router.errorResponse "Delivery is not configured"
// @Failure 502 {object} router.errorResponse "Provider rejected the message"
// @Router /api/v1/smsotp/devices/{id}/challenge [post]
func (h *HTTPEndpoint) ChallengeCreate(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.ChallengeCreate(r.Context(), usecase.ChallengeCreateInput{DeviceID: id})
	if err != nil {
		return nil, err
	}

	return ChallengeResponse{Challenge: resp.Challenge}, nil
}

// TokenVerify checks a token against the device's acceptance window.
// @Summary Verify token
// @Description Checks a candidate token. The response reports success or failure without distinguishing the failure cause.
// @Tags SMSOTP, Tokens
// @Accept json
// @Produce json
// @Param id path string true "Device ID"
// @Param request body TokenVerifyRequest true "Verification payload"
// @Success 200 {object} router.successResponse{data=TokenVerifyResponse} "Verification result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 404 {object} router.errorResponse "Device not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/smsotp/devices/{id}/verify [post]
func (h *HTTPEndpoint) TokenVerify(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req TokenVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.TokenVerify(r.Context(), usecase.TokenVerifyInput{
		DeviceID: id,
		Code:     req.Code,
	})
	if err != nil {
		return nil, err
	}

	return TokenVerifyResponse{Verified: resp.Verified}, nil
}
