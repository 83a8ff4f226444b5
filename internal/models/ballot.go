package models

import "time"

// ElectionID identifies the only election this deployment runs.
const ElectionID = "ELC-2025-GENERAL"

// ReceiptTimeLayout formats receipt and audit timestamps.
const ReceiptTimeLayout = "2006-01-02 15:04:05"

// Candidate is a ballot option.
type Candidate struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Party string `json:"party"`
	Photo string `json:"photo"`
	Bio   string `json:"bio"`
}

// BlockchainReceipt is the mock ledger record handed back after a vote.
type BlockchainReceipt struct {
	ElectionID      string    `json:"electionId"`
	Timestamp       string    `json:"timestamp"`
	TransactionHash string    `json:"transactionHash"`
	CastAt          time.Time `json:"-"`
}

// ZKPStatus is the cosmetic proof state shown while a ballot is submitted.
type ZKPStatus string

const (
	ZKPIdle       ZKPStatus = "idle"
	ZKPProcessing ZKPStatus = "processing"
	ZKPVerified   ZKPStatus = "verified"
)

// Submission tracks one ballot moving through the simulated pipeline.
type Submission struct {
	ID          string             `json:"id"`
	VoterID     string             `json:"voterId"`
	CandidateID string             `json:"candidateId"`
	ZKPStatus   ZKPStatus          `json:"zkpStatus"`
	Receipt     *BlockchainReceipt `json:"receipt,omitempty"`
	Error       string             `json:"error,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	FinishedAt  *time.Time         `json:"finishedAt,omitempty"`
}

// Done reports whether the pipeline has stopped, successfully or not.
func (s Submission) Done() bool {
	return s.FinishedAt != nil
}
