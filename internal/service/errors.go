package service

import "errors"

// 服务层统一哨兵错误，handler 层按 errors.Is 匹配映射为响应码。
var (
	ErrNotFound           = errors.New("record not found")
	ErrForbidden          = errors.New("operation not allowed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrWeakPassword       = errors.New("password too weak")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrNameRequired       = errors.New("name required")
	ErrEmailExists        = errors.New("email already exists")

	ErrInvalidRole         = errors.New("invalid role")
	ErrAccountNotApproved  = errors.New("account pending approval")
	ErrAccountDisabled     = errors.New("account disabled")
	ErrParentAgentRequired = errors.New("parent agent code required")
	ErrParentAgentInvalid  = errors.New("parent agent invalid")
	ErrAgentCodeExhausted  = errors.New("agent code allocation failed")

	ErrLeadNotFound           = errors.New("lead not found")
	ErrLeadAlreadyDecided     = errors.New("lead already decided")
	ErrLeadDecisionInvalid    = errors.New("lead decision invalid")
	ErrInvalidInvestmentType  = errors.New("invalid investment type")
	ErrInvalidInvestAmount    = errors.New("invalid investment amount")
	ErrLeadCustomerIncomplete = errors.New("lead customer fields incomplete")

	ErrPayoutNotFound           = errors.New("payout not found")
	ErrPayoutAlreadyPaid        = errors.New("payout already paid")
	ErrCommissionRateOutOfRange = errors.New("commission rate out of range")

	ErrCaptchaRequired      = errors.New("captcha required")
	ErrCaptchaInvalid       = errors.New("captcha invalid")
	ErrCaptchaConfigInvalid = errors.New("captcha config invalid")

	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")

	ErrMarketDataUnavailable = errors.New("market data upstream unavailable")
	ErrDashboardRangeInvalid = errors.New("dashboard range invalid")
	ErrContactMessageEmpty   = errors.New("contact message empty")
)
