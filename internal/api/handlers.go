package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"snapwallet/internal/ai"
	"snapwallet/internal/cache"
	"snapwallet/internal/models"
	"snapwallet/internal/wallet"
)

func (s *Server) listAccounts(c *gin.Context) {
	accounts := s.store.List()

	out := make([]gin.H, 0, len(accounts))
	for _, acc := range accounts {
		stats := s.statsFor(acc)
		out = append(out, gin.H{
			"id":              acc.ID,
			"username":        acc.Username,
			"balance":         stats.Balance,
			"total_data":      stats.TotalData,
			"photos_uploaded": stats.PhotosUploaded,
		})
	}

	c.JSON(http.StatusOK, gin.H{"accounts": out})
}

func (s *Server) getStats(c *gin.Context) {
	accountID := c.Param("account_id")

	ctx, cancel := s.ctx(c)
	defer cancel()

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cache.StatsKey(accountID)); err == nil && cached != "" {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "application/json", []byte(cached))
			return
		}
	}

	stats, ok := s.store.Stats(accountID)
	if !ok {
		s.accountNotFound(c)
		return
	}

	body, err := json.Marshal(stats)
	if err == nil && s.cache != nil {
		if err := s.cache.Set(ctx, cache.StatsKey(accountID), string(body)); err != nil {
			s.log.Warn("cache_set_failed", "key", cache.StatsKey(accountID), "error", err)
		}
	}

	c.JSON(http.StatusOK, stats)
}

func (s *Server) getFeed(c *gin.Context) {
	accountID := c.Param("account_id")

	ctx, cancel := s.ctx(c)
	defer cancel()

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cache.FeedKey(accountID)); err == nil && cached != "" {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "application/json", []byte(cached))
			return
		}
	}

	photos, ok := s.store.VisiblePhotos(accountID)
	if !ok {
		s.accountNotFound(c)
		return
	}

	resp := gin.H{"photos": photos}
	if body, err := json.Marshal(resp); err == nil && s.cache != nil {
		if err := s.cache.Set(ctx, cache.FeedKey(accountID), string(body)); err != nil {
			s.log.Warn("cache_set_failed", "key", cache.FeedKey(accountID), "error", err)
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) getHistory(c *gin.Context) {
	accountID := c.Param("account_id")

	history, ok := s.store.History(accountID)
	if !ok {
		s.accountNotFound(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}

type uploadRequest struct {
	Image string `json:"image"`
}

// uploadPhoto is the full submission flow: decode the payload, let the
// Analysis Service judge it (falling back locally on any failure, the user is
// credited either way), store the object, then apply the upload mutation
// once. Exactly one photo and one ledger entry per call.
func (s *Server) uploadPhoto(c *gin.Context) {
	accountID := c.Param("account_id")
	if _, ok := s.store.Get(accountID); !ok {
		s.accountNotFound(c)
		return
	}

	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Image) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "invalid_payload", "message": "image payload required"}})
		return
	}

	imageData, err := decodeImagePayload(req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "invalid_payload", "message": "image must be base64 encoded"}})
		return
	}

	// External call first: no ledger mutation until it resolves.
	analysisCtx, cancel := s.ctx(c)
	analysis, err := s.analyzer.AnalyzePhoto(analysisCtx, imageData)
	cancel()
	if err != nil {
		s.log.Warn("analysis_failed_using_fallback", "account_id", accountID, "error", err)
		analysis = ai.FallbackAnalysis()
	}

	url, err := s.storage.UploadPhoto(accountID, uuid.NewString(), imageData)
	if err != nil {
		s.log.Error("photo_storage_failed", "account_id", accountID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": gin.H{"code": "storage_failed", "message": "could not store photo"}})
		return
	}

	photo, entry, ok := s.store.RecordUpload(accountID, url, analysis.Feedback)
	if !ok {
		s.accountNotFound(c)
		return
	}

	s.invalidateAndPush(c.Request.Context(), accountID)

	c.JSON(http.StatusCreated, gin.H{
		"photo":    photo,
		"entry":    entry,
		"reward":   analysis.Reward,
		"feedback": analysis.Feedback,
	})
}

func (s *Server) hidePhoto(c *gin.Context) {
	accountID := c.Param("account_id")
	photoID := c.Param("photo_id")

	if _, ok := s.store.Get(accountID); !ok {
		s.accountNotFound(c)
		return
	}

	if !s.store.HidePhoto(accountID, photoID) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "photo_not_found", "message": "photo not found"}})
		return
	}

	s.invalidateAndPush(c.Request.Context(), accountID)

	c.JSON(http.StatusOK, gin.H{"hidden": true})
}

type withdrawRequest struct {
	Amount float64 `json:"amount"`
	Method string  `json:"method"`
}

func (s *Server) withdraw(c *gin.Context) {
	accountID := c.Param("account_id")

	var req withdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "invalid_payload", "message": "amount and method required"}})
		return
	}
	if strings.TrimSpace(req.Method) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "invalid_payload", "message": "payment method required"}})
		return
	}

	if _, ok := s.store.Get(accountID); !ok {
		s.accountNotFound(c)
		return
	}

	if req.Amount < models.MinWithdrawal {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": gin.H{
			"code":    "below_minimum",
			"message": "minimum withdrawal is ₹10",
		}})
		return
	}

	// The store re-checks the balance under its own lock; this is the
	// user-facing precondition, that is the invariant.
	if !s.store.Withdraw(accountID, req.Amount, req.Method) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": gin.H{
			"code":    "insufficient_balance",
			"message": "requested amount exceeds current balance",
		}})
		return
	}

	s.invalidateAndPush(c.Request.Context(), accountID)

	stats, _ := s.store.Stats(accountID)
	history, _ := s.store.History(accountID)
	c.JSON(http.StatusCreated, gin.H{
		"entry":   history[0],
		"balance": stats.Balance,
	})
}

type redeemRequest struct {
	Code string `json:"code"`
}

// mockAllocation is what a successfully authenticated voucher provisions in
// this demo. Mirrors the reference behavior; a real issuer would price codes.
const mockAllocation = "2GB"

func (s *Server) redeem(c *gin.Context) {
	accountID := c.Param("account_id")

	var req redeemRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "invalid_payload", "message": "code required"}})
		return
	}

	if _, ok := s.store.Get(accountID); !ok {
		s.accountNotFound(c)
		return
	}

	if !wallet.IsValidCode(req.Code) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": gin.H{
			"code":    "invalid_code",
			"message": "authentication failed: code does not meet the generation standard",
		}})
		return
	}

	entry, ok := s.store.Redeem(accountID, mockAllocation)
	if !ok {
		s.accountNotFound(c)
		return
	}

	s.invalidateAndPush(c.Request.Context(), accountID)

	acc, _ := s.store.Get(accountID)
	c.JSON(http.StatusCreated, gin.H{
		"entry":      entry,
		"total_data": acc.TotalData,
	})
}

type generateVoucherRequest struct {
	Prompt string `json:"prompt"`
}

func (s *Server) generateVoucher(c *gin.Context) {
	var req generateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "invalid_payload", "message": "prompt required"}})
		return
	}

	ctx, cancel := s.ctx(c)
	defer cancel()

	voucher, err := s.synth.GenerateVoucher(ctx, req.Prompt)
	if err != nil {
		s.log.Warn("synthesis_failed_using_fallback", "error", err)
		voucher = ai.FallbackVoucher()
	}

	c.JSON(http.StatusOK, gin.H{
		"code":       voucher.Code,
		"dataAmount": voucher.DataAmount,
	})
}

func (s *Server) health(c *gin.Context) {
	cacheState := "disabled"
	if s.cache != nil {
		cacheState = "connected"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"accounts": len(s.store.List()),
		"cache":    cacheState,
		"time":     time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) accountNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "account_not_found", "message": "account not found"}})
}

func (s *Server) statsFor(acc models.Account) models.Stats {
	stats, _ := s.store.Stats(acc.ID)
	return stats
}

// decodeImagePayload accepts either a bare base64 string or a data URL.
func decodeImagePayload(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if idx := strings.Index(payload, ";base64,"); idx >= 0 {
		payload = payload[idx+len(";base64,"):]
	}
	return base64.StdEncoding.DecodeString(payload)
}
