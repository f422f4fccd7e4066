// tanker-rebuild recomputes the tanker-pool stock balances from the movement
// ledger and reports drift against the stored quantities. Tanker rows are
// created at zero and only ever change through movements, so the ledger sum is
// the authoritative balance.
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/tanker-rebuild [--product-id N] [--fix]
package main

import (
	"flag"
	"fmt"
	"os"

	"bitbucket.org/transfuel/fleet_backend/config"
	"bitbucket.org/transfuel/fleet_backend/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func main() {
	productID := flag.Int("product-id", 0, "Optional: limit to one product")
	fix := flag.Bool("fix", false, "Write the recomputed balance back (with an ADJUSTMENT movement)")
	flag.Parse()

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	var pools []models.Stock
	q := db.Where("is_tanker = 1")
	if *productID > 0 {
		q = q.Where("product_id = ?", *productID)
	}
	if err := q.Order("product_id ASC").Find(&pools).Error; err != nil {
		fmt.Fprintf(os.Stderr, "list tanker pools: %v\n", err)
		os.Exit(1)
	}
	if len(pools) == 0 {
		fmt.Println("no tanker pool rows found")
		return
	}

	drifted := 0
	for _, pool := range pools {
		var ledgerSum decimal.NullDecimal
		if err := db.Model(&models.StockMovement{}).
			Where("stock_id = ?", pool.ID).
			Select("SUM(qty)").
			Scan(&ledgerSum).Error; err != nil {
			fmt.Fprintf(os.Stderr, "sum movements for stock_id=%d: %v\n", pool.ID, err)
			os.Exit(1)
		}

		expected := decimal.Zero
		if ledgerSum.Valid {
			expected = ledgerSum.Decimal
		}
		drift := pool.Qty.Sub(expected)
		if drift.IsZero() {
			continue
		}
		drifted++
		fmt.Printf("product_id=%d stock_id=%d stored=%s ledger=%s drift=%s\n",
			pool.ProductId, pool.ID, pool.Qty.String(), expected.String(), drift.String())

		if !*fix {
			continue
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.Stock{}).Where("id = ?", pool.ID).Update("Qty", expected).Error; err != nil {
				return err
			}
			movement := models.StockMovement{
				StockId:     pool.ID,
				Type:        models.MovementTypeAdjustment,
				Qty:         drift.Neg(),
				Description: "Tanker rebuild correction",
			}
			return tx.Create(&movement).Error
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "fix stock_id=%d: %v\n", pool.ID, err)
			os.Exit(1)
		}
		fmt.Printf("fixed stock_id=%d -> %s\n", pool.ID, expected.String())
	}

	if drifted == 0 {
		fmt.Printf("all %d tanker pool balances match the ledger\n", len(pools))
	} else {
		fmt.Printf("%d of %d tanker pool balances drifted\n", drifted, len(pools))
	}
}
