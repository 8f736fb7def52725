package ai

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Analysis is the result of the photo Analysis Service: a fixed reward and an
// encouraging feedback line. The reward is expected to always be the flat
// upload credit; the service is a thin wrapper, not a pricing engine.
type Analysis struct {
	Reward   float64 `json:"reward"`
	Feedback string  `json:"feedback"`
}

// Voucher is the result of the Code Synthesis Service.
type Voucher struct {
	Code       string `json:"code"`
	DataAmount string `json:"dataAmount"`
}

// Analyzer accepts an opaque image payload and returns the credit decision.
type Analyzer interface {
	AnalyzePhoto(ctx context.Context, image []byte) (Analysis, error)
}

// Synthesizer turns a free-text prompt into a redeemable voucher.
type Synthesizer interface {
	GenerateVoucher(ctx context.Context, prompt string) (Voucher, error)
}

const fallbackFeedback = "Photo successfully received. Your wallet has been credited with ₹2.00."

// FallbackAnalysis is substituted whenever the remote analysis call fails.
// Failures never reach the ledger as errors; the user is credited either way.
func FallbackAnalysis() Analysis {
	return Analysis{Reward: 2, Feedback: fallbackFeedback}
}

// FallbackVoucher generates a local pseudo-random voucher when the synthesis
// call fails.
func FallbackVoucher() Voucher {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return Voucher{
		Code:       "BING-" + strings.ToUpper(hex.EncodeToString(buf)),
		DataAmount: "1GB",
	}
}

// StubAnalyzer is the deterministic in-process variant, used in tests and
// when no API key is configured.
type StubAnalyzer struct{}

func (StubAnalyzer) AnalyzePhoto(_ context.Context, _ []byte) (Analysis, error) {
	return Analysis{
		Reward:   2,
		Feedback: "Excellent composition! Your contribution has been verified and ₹2.00 is credited to your wallet.",
	}, nil
}

// StubSynthesizer derives the voucher from the prompt so repeated calls with
// the same prompt yield the same code.
type StubSynthesizer struct{}

func (StubSynthesizer) GenerateVoucher(_ context.Context, prompt string) (Voucher, error) {
	sum := sha256.Sum256([]byte(prompt))
	return Voucher{
		Code:       fmt.Sprintf("BING-%s", strings.ToUpper(hex.EncodeToString(sum[:4]))),
		DataAmount: "1GB",
	}, nil
}
