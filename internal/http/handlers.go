package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"wallet/internal/api"
	"wallet/internal/core"
	"wallet/internal/log"
)

const maxBodyBytes = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListAccounts returns accounts newest first, each with the cached
// balance and its projection from the transaction history.
func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, txs := s.ledger.Snapshot(r.Context())
	projected := core.ProjectAll(accounts, txs)

	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID > accounts[j].ID })

	resp := make([]api.AccountDTO, 0, len(accounts))
	for _, a := range accounts {
		dto := api.AccountFromCore(a)
		balance := projected[a.ID]
		dto.BalanceCents = &balance
		resp = append(resp, dto)
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req api.AccountRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	acc, err := s.ledger.CreateAccount(r.Context(), core.NewAccount{
		Name:          req.Name,
		Currency:      req.Currency,
		InitialAmount: req.AmountCents,
	})
	if err != nil {
		s.respondWithDomainError(w, r, "create_account", err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Account created",
		log.FieldAccountID, acc.ID,
		log.FieldCurrency, acc.Currency)
	respondWithJSON(w, http.StatusCreated, api.AccountFromCore(acc))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusBadRequest, "account id must be numeric")
		return
	}
	limit, err := queryInt(r, "limit", core.DefaultPageLimit)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := s.ledger.ListTransactions(r.Context(), id, core.Page{Limit: limit, Offset: offset})
	if err != nil {
		s.respondWithDomainError(w, r, "list_transactions", err)
		return
	}

	resp := api.TransactionPageDTO{
		Account: api.AccountFromCore(page.Account),
		Items:   make([]api.TransactionDTO, 0, len(page.Items)),
		Limit:   page.Limit,
		Offset:  page.Offset,
	}
	for _, t := range page.Items {
		resp.Items = append(resp.Items, api.TransactionFromCore(t))
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req api.TransactionRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	typ, err := core.ParseTxType(req.Type)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, errorMessage(err))
		return
	}
	n := core.NewTransaction{
		AccountID:   req.AccountID,
		Type:        typ,
		AmountCents: req.AmountCents,
		Description: req.Description,
	}
	if strings.TrimSpace(req.OccurredAt) != "" {
		at, err := time.Parse(time.RFC3339, req.OccurredAt)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "occurredAt must be RFC3339")
			return
		}
		n.OccurredAt = &at
	}

	tx, err := s.ledger.CreateTransaction(r.Context(), n)
	if err != nil {
		s.respondWithDomainError(w, r, "create_transaction", err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction recorded",
		log.NewFields().WithTransaction(tx.AccountID, string(tx.Type), tx.AmountCents).ToSlice()...)
	respondWithJSON(w, http.StatusCreated, api.TransactionFromCore(tx))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	var q core.SummaryQuery
	if v := strings.TrimSpace(r.URL.Query().Get("account_id")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "account_id must be numeric")
			return
		}
		q.AccountID = &id
	}

	var err error
	if q.From, err = queryTime(r, "from"); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if q.To, err = queryTime(r, "to"); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	sum, err := s.ledger.Summary(r.Context(), q)
	if err != nil {
		s.respondWithDomainError(w, r, "summary", err)
		return
	}
	log.FromContext(r.Context()).DebugContext(r.Context(), "Summary computed",
		log.NewFields().WithRange(sum.From, sum.To).ToSlice()...)
	respondWithJSON(w, http.StatusOK, api.SummaryFromCore(sum))
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.ledger.Register(r.Context(), core.Registration{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.respondWithDomainError(w, r, "register", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, api.UserFromCore(user))
}

// respondWithDomainError writes err with its mapped status. Server faults are
// logged and their detail is not sent to the client.
func (s *Server) respondWithDomainError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogError(r.Context(), "Request failed", err, operation, "internal")
		respondWithError(w, code, "internal error")
		return
	}
	respondWithError(w, code, errorMessage(err))
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
