package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	WalletTxDebit  = "debit"
	WalletTxCredit = "credit"
)

// WalletTransaction is an append-only audit entry. The wallet balance always
// equals the signed sum of its transactions.
type WalletTransaction struct {
	ID          string    `bson:"id" json:"id"`
	Amount      float64   `bson:"amount" json:"amount"`
	Type        string    `bson:"type" json:"type"`
	Description string    `bson:"description" json:"description"`
	Date        time.Time `bson:"date" json:"date"`
}

// Wallet is the per-user store-credit balance. Debits and credits go through
// single guarded updates so the balance can never go negative or lose a
// concurrent write.
type Wallet struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID  `bson:"userId" json:"userId"`
	Balance      float64             `bson:"balance" json:"balance"`
	Transactions []WalletTransaction `bson:"transactions" json:"transactions"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
}
