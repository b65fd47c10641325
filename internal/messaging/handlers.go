// internal/messaging/handlers.go

package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/imadgeboyega/matchmaking-backend/internal/auth"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/logger"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/utils"
	"github.com/imadgeboyega/matchmaking-backend/internal/storage"
	"go.uber.org/zap"
)

type Handler struct {
	service   *Service
	maxUpload int64
}

func NewHandler(service *Service, maxUpload int64) *Handler {
	return &Handler{service: service, maxUpload: maxUpload}
}

func (h *Handler) ListChatPartners(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	partners, err := h.service.ListChatPartners(r.Context(), userID)
	if err != nil {
		h.fail(w, r, "list chat partners", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, partners)
}

func (h *Handler) SendText(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	var req SendTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	msg, err := h.service.SendText(r.Context(), userID, req.ReceiverID, req.Text)
	if err != nil {
		h.fail(w, r, "send message", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, msg)
}

func (h *Handler) SendImage(w http.ResponseWriter, r *http.Request) {
	h.sendMedia(w, r, "image", h.service.SendImage)
}

func (h *Handler) SendVoice(w http.ResponseWriter, r *http.Request) {
	h.sendMedia(w, r, "audio", h.service.SendAudio)
}

type mediaSender func(ctx context.Context, senderID, receiverID int64, upload *storage.Upload) (*Message, error)

func (h *Handler) sendMedia(w http.ResponseWriter, r *http.Request, field string, send mediaSender) {
	userID, _ := auth.GetUserIDFromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+1<<20)

	upload, closeFile, err := storage.FormUpload(r, field)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	defer closeFile()

	receiverID, err := utils.ParseID(r.FormValue("receiverId"), "receiverId")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	msg, err := send(r.Context(), userID, receiverID, upload)
	if err != nil {
		h.fail(w, r, "send "+field+" message", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, msg)
}

func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())
	partnerID, err := utils.PathID(r, "partnerId")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	msgs, err := h.service.GetConversation(r.Context(), userID, partnerID)
	if err != nil {
		h.fail(w, r, "get conversation", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, msgs)
}

func (h *Handler) PollMessages(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())
	partnerID, err := utils.PathID(r, "partnerId")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	lastChecked := time.UnixMilli(0)
	if raw := r.URL.Query().Get("lastChecked"); raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || ms < 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid lastChecked.")
			return
		}
		lastChecked = time.UnixMilli(ms)
	}

	result, err := h.service.PollMessages(r.Context(), userID, partnerID, lastChecked)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		logger.Debug(r.Context(), "poll abandoned by client", zap.Int64("user_id", userID))
		return
	}
	if err != nil {
		h.fail(w, r, "poll messages", err)
		return
	}
	if len(result.Messages) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) InitiateCall(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	var req InitiateCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	call, err := h.service.InitiateCall(r.Context(), userID, req)
	if err != nil {
		h.fail(w, r, "initiate call", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, InitiateCallResponse{CallID: call.ID})
}

func (h *Handler) AnswerCall(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	var req AnswerCallRequest
	if !decodeCall(w, r, &req) {
		return
	}

	if err := h.service.AnswerCall(r.Context(), userID, req.CallID, req.Answer); err != nil {
		h.fail(w, r, "answer call", err)
		return
	}
	utils.RespondWithMessage(w, http.StatusOK, "Answer saved.")
}

func (h *Handler) RejectCall(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	var req CallRequest
	if !decodeCall(w, r, &req) {
		return
	}

	if err := h.service.RejectCall(r.Context(), userID, req.CallID); err != nil {
		h.fail(w, r, "reject call", err)
		return
	}
	utils.RespondWithMessage(w, http.StatusOK, "Call rejected.")
}

func (h *Handler) ExchangeIceCandidate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	var req IceCandidateRequest
	if !decodeCall(w, r, &req) {
		return
	}

	if err := h.service.ExchangeIceCandidate(r.Context(), userID, req.CallID, req.Candidate); err != nil {
		h.fail(w, r, "exchange ICE candidate", err)
		return
	}
	utils.RespondWithMessage(w, http.StatusOK, "ICE candidate saved.")
}

func (h *Handler) PollIceCandidate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())
	callID, err := utils.ParseID(r.URL.Query().Get("callId"), "callId")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	candidate, err := h.service.PollIceCandidate(r.Context(), userID, callID)
	if err != nil {
		h.fail(w, r, "poll ICE candidate", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]json.RawMessage{"candidate": orNull(candidate)})
}

func (h *Handler) PollAnswer(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())
	callID, err := utils.ParseID(r.URL.Query().Get("callId"), "callId")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	answer, err := h.service.PollAnswer(r.Context(), userID, callID)
	if err != nil {
		h.fail(w, r, "poll call answer", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]json.RawMessage{"answer": orNull(answer)})
}

func (h *Handler) EndCall(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	var req CallRequest
	if !decodeCall(w, r, &req) {
		return
	}

	duration, err := h.service.EndCall(r.Context(), userID, req.CallID)
	if err != nil {
		h.fail(w, r, "end call", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, EndCallResponse{Message: "Call ended.", CallDuration: duration})
}

// decodeCall decodes and validates a call request body, answering 400 on failure
func decodeCall(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func orNull(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("null")
	}
	return raw
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if utils.IsServerError(err) {
		logger.Error(r.Context(), op+" failed", zap.Error(err))
	}
	utils.RespondWithAppError(w, err)
}
