package public

import (
	"errors"

	"github.com/fundlink-next/internal/http/response"
	"github.com/fundlink-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var registerErrorRules = []mappedHandlerError{
	{target: service.ErrNameRequired, code: response.CodeBadRequest, msg: "name is required"},
	{target: service.ErrInvalidEmail, code: response.CodeBadRequest, msg: "email invalid"},
	{target: service.ErrEmailExists, code: response.CodeBadRequest, msg: "email already registered"},
	{target: service.ErrInvalidRole, code: response.CodeBadRequest, msg: "role invalid"},
	{target: service.ErrWeakPassword, code: response.CodeBadRequest, msg: "password too weak"},
	{target: service.ErrParentAgentRequired, code: response.CodeBadRequest, msg: "parent agent code is required"},
	{target: service.ErrParentAgentInvalid, code: response.CodeBadRequest, msg: "parent agent code invalid"},
	{target: service.ErrAgentCodeExhausted, code: response.CodeInternal, msg: "agent code allocation failed"},
}

var loginErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidEmail, code: response.CodeBadRequest, msg: "email invalid"},
	{target: service.ErrInvalidCredentials, code: response.CodeUnauthorized, msg: "email or password incorrect"},
	{target: service.ErrAccountNotApproved, code: response.CodeForbidden, msg: "account pending approval"},
	{target: service.ErrAccountDisabled, code: response.CodeForbidden, msg: "account disabled"},
}

var leadCreateErrorRules = []mappedHandlerError{
	{target: service.ErrForbidden, code: response.CodeForbidden, msg: "not allowed to submit leads"},
	{target: service.ErrLeadCustomerIncomplete, code: response.CodeBadRequest, msg: "customer name, phone and email are required"},
	{target: service.ErrInvalidInvestmentType, code: response.CodeBadRequest, msg: "investment type invalid"},
	{target: service.ErrInvalidInvestAmount, code: response.CodeBadRequest, msg: "investment amount must be positive"},
}

var marketDataErrorRules = []mappedHandlerError{
	{target: service.ErrMarketDataUnavailable, code: response.CodeInternal, msg: "market data unavailable"},
}

var contactSubmitErrorRules = []mappedHandlerError{
	{target: service.ErrNameRequired, code: response.CodeBadRequest, msg: "name is required"},
	{target: service.ErrInvalidEmail, code: response.CodeBadRequest, msg: "email invalid"},
	{target: service.ErrContactMessageEmpty, code: response.CodeBadRequest, msg: "message is required"},
}

func respondRegisterError(c *gin.Context, err error) {
	// 弱口令错误携带具体策略说明，直接透出
	if errors.Is(err, service.ErrWeakPassword) {
		respondError(c, response.CodeBadRequest, err.Error(), nil)
		return
	}
	respondWithMappedError(c, err, registerErrorRules, response.CodeInternal, "registration failed")
}

func respondLoginError(c *gin.Context, err error) {
	respondWithMappedError(c, err, loginErrorRules, response.CodeInternal, "login failed")
}

func respondLeadCreateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, leadCreateErrorRules, response.CodeInternal, "failed to submit lead")
}

func respondMarketDataError(c *gin.Context, err error) {
	respondWithMappedError(c, err, marketDataErrorRules, response.CodeInternal, "market data unavailable")
}

func respondContactSubmitError(c *gin.Context, err error) {
	respondWithMappedError(c, err, contactSubmitErrorRules, response.CodeInternal, "failed to submit message")
}
