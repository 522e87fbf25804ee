package handlers

import (
	"github.com/go-chi/chi/v5"
)

// Mount registers the cashier routes on an authenticated router.
func Mount(r chi.Router, registers *RegisterHandler, transactions *TransactionHandler, receipts *ReceiptHandler) {
	r.Route("/registers", func(r chi.Router) {
		r.Get("/", registers.GetRegisters)
		r.Route("/{date}", func(r chi.Router) {
			r.Get("/", registers.GetRegister)
			r.Post("/open", registers.OpenRegister)
			r.Post("/close", registers.CloseRegister)
			r.Get("/audit", registers.AuditRegister)
			r.Get("/slip", receipts.ClosingSlip)
			r.Post("/transactions", transactions.PostTransaction)
			r.Get("/transactions", transactions.GetTransactions)
		})
	})

	r.Get("/transactions/{id}", transactions.GetTransaction)
	r.Get("/reports/summary", transactions.Summary)
}
