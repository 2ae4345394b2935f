package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenInvoiceNo builds an invoice number: PREFIX-YYYYMMDD-SEQ.
func GenInvoiceNo(prefix string, seq uint, t time.Time) string {
	return fmt.Sprintf("%s-%s-%05d", prefix, t.Format("20060102"), seq)
}

// GenReceiptNo builds a receipt reference with a short random suffix so
// receipts stay unique even when issued in the same second.
func GenReceiptNo(prefix string, t time.Time) string {
	suffix := strings.ToUpper(uuid.NewString()[:8])
	return fmt.Sprintf("%s-%s-%s", prefix, t.Format("20060102"), suffix)
}
