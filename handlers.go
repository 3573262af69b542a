package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"banktrack/models"
	"banktrack/pkg/cache"
	"banktrack/pkg/ledger"

	"github.com/gin-gonic/gin"
)

const bankListCacheKey = "banks"

// app holds the wired domain services. Handlers stay thin: bind, call into
// pkg/ledger, map the error.
type app struct {
	identity  *ledger.Identity
	banks     *ledger.Registry
	accounts  *ledger.Accounts
	netWorth  *ledger.NetWorth
	history   *ledger.History
	views     *cache.Cache // nil when Redis is not configured
	timeout   time.Duration
	jwtSecret []byte
}

func (a *app) setupRoutes(r *gin.Engine) {
	r.POST("/register", a.registerHandler)
	r.POST("/login", a.loginHandler)
	authGroup := r.Group("")
	authGroup.Use(jwtAuthMiddleware(a.jwtSecret))
	authGroup.GET("/me", a.meHandler)
	authGroup.DELETE("/me", a.deleteMeHandler)
	authGroup.POST("/banks", a.createBankHandler)
	authGroup.GET("/banks", a.listBanksHandler)
	authGroup.GET("/banks/:name/balance", a.bankBalanceHandler)
	authGroup.GET("/banks/:name/accounts", a.listAccountsHandler)
	authGroup.POST("/accounts", a.openAccountHandler)
	authGroup.DELETE("/accounts/:bank/:type", a.closeAccountHandler)
	authGroup.GET("/accounts/:bank/:type/balance", a.accountBalanceHandler)
	authGroup.GET("/accounts/:bank/:type/transactions", a.recentTransactionsHandler)
	authGroup.GET("/accounts/:bank/:type/transactions/monthly", a.monthlyTransactionsHandler)
	authGroup.GET("/networth", a.netWorthHandler)
}

// opCtx bounds one store-backed operation with the configured timeout.
func (a *app) opCtx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), a.timeout)
}

// respondErr maps the domain error taxonomy onto HTTP statuses. Persistence
// faults are logged in full but answered with a generic body; raw store
// errors must not reach the client.
func respondErr(c *gin.Context, err error) {
	var pe *ledger.PersistenceError
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, ledger.ErrDuplicateEmail),
		errors.Is(err, ledger.ErrDuplicateAccount):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.As(err, &pe):
		log.Printf("persistence error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "temporary storage failure, please retry"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func parseAccountType(raw string) (models.AccountType, bool) {
	t := models.AccountType(strings.ToLower(strings.TrimSpace(raw)))
	return t, t.Valid()
}

func (a *app) registerHandler(c *gin.Context) {
	var req struct {
		FirstName string `json:"first_name" binding:"required"`
		LastName  string `json:"last_name" binding:"required"`
		Email     string `json:"email" binding:"required,email"`
		Password  string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx, cancel := a.opCtx(c)
	defer cancel()
	id, err := a.identity.Register(ctx, req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (a *app) loginHandler(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx, cancel := a.opCtx(c)
	defer cancel()
	user, err := a.identity.Login(ctx, req.Email, req.Password)
	if err != nil {
		respondErr(c, err)
		return
	}
	tokenString, err := issueToken(user, a.jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "login successful", "token": tokenString, "user_id": user.ID})
}

func (a *app) meHandler(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	ctx, cancel := a.opCtx(c)
	defer cancel()
	u, err := a.identity.User(ctx, userID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         u.ID,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"email":      u.Email,
		"active":     u.Active,
	})
}

// deleteMeHandler permanently deletes the authenticated user and cascades to
// every account and transaction they own.
func (a *app) deleteMeHandler(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	ctx, cancel := a.opCtx(c)
	defer cancel()
	if err := a.identity.DeleteUser(ctx, userID); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

func (a *app) createBankHandler(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx, cancel := a.opCtx(c)
	defer cancel()
	if err := a.banks.Create(ctx, req.Name); err != nil {
		respondErr(c, err)
		return
	}
	a.views.Invalidate(ctx, bankListCacheKey)
	c.JSON(http.StatusOK, gin.H{"message": "bank registered"})
}

func (a *app) listBanksHandler(c *gin.Context) {
	ctx, cancel := a.opCtx(c)
	defer cancel()
	var banks []models.Bank
	if a.views.Get(ctx, bankListCacheKey, &banks) {
		c.JSON(http.StatusOK, banks)
		return
	}
	banks, err := a.banks.List(ctx)
	if err != nil {
		respondErr(c, err)
		return
	}
	a.views.Set(ctx, bankListCacheKey, banks)
	c.JSON(http.StatusOK, banks)
}

func (a *app) bankBalanceHandler(c *gin.Context) {
	name := c.Param("name")
	ctx, cancel := a.opCtx(c)
	defer cancel()
	balance, err := a.banks.Balance(ctx, name)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bank": name, "balance": balance})
}

func (a *app) listAccountsHandler(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	ctx, cancel := a.opCtx(c)
	defer cancel()
	accs, err := a.accounts.AtBank(ctx, userID, c.Param("name"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, accs)
}

func (a *app) openAccountHandler(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		Bank string `json:"bank" binding:"required"`
		Type string `json:"type" binding:"required"`
		// Opening balance in the smallest currency unit; accepted as given,
		// negatives included.
		OpeningBalance int64 `json:"opening_balance"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	typ, ok := parseAccountType(req.Type)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown account type"})
		return
	}
	ctx, cancel := a.opCtx(c)
	defer cancel()
	if err := a.accounts.Open(ctx, userID, req.Bank, typ, req.OpeningBalance); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "account opened"})
}

func (a *app) closeAccountHandler(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	typ, ok := parseAccountType(c.Param("type"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown account type"})
		return
	}
	ctx, cancel := a.opCtx(c)
	defer cancel()
	if err := a.accounts.Close(ctx, userID, c.Param("bank"), typ); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "account closed"})
}

func (a *app) accountBalanceHandler(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	typ, ok := parseAccountType(c.Param("type"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown account type"})
		return
	}
	ctx, cancel := a.opCtx(c)
	defer cancel()
	balance, err := a.accounts.Balance(ctx, userID, c.Param("bank"), typ)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bank": c.Param("bank"), "type": typ, "balance": balance})
}

func (a *app) recentTransactionsHandler(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	typ, ok := parseAccountType(c.Param("type"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown account type"})
		return
	}
	limit := 0
	if v := c.Query("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}
	ctx, cancel := a.opCtx(c)
	defer cancel()
	txns, err := a.history.Recent(ctx, userID, c.Param("bank"), typ, limit)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, txns)
}

func (a *app) monthlyTransactionsHandler(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	typ, ok := parseAccountType(c.Param("type"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown account type"})
		return
	}
	ref := time.Now()
	if v := c.Query("date"); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		ref = parsed
	}
	ctx, cancel := a.opCtx(c)
	defer cancel()
	txns, err := a.history.Monthly(ctx, userID, c.Param("bank"), typ, ref)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, txns)
}

func (a *app) netWorthHandler(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	ctx, cancel := a.opCtx(c)
	defer cancel()
	total, err := a.netWorth.Calculate(ctx, userID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"net_worth": total})
}
