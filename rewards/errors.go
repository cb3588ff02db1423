package main

import (
	"errors"
	"github.com/labstack/echo/v4"
	"kondecoracao/common"
	"net/http"
)

// appError is rendered to client as {"error": message}
type appError struct {
	status  int
	message string
}

func (e *appError) Error() string {
	return e.message
}

var (
	errNotAuthenticated    = &appError{http.StatusUnauthorized, "Não autenticado"}
	errForbidden           = &appError{http.StatusForbidden, "Acesso negado"}
	errProfileNotFound     = &appError{http.StatusNotFound, "Perfil não encontrado"}
	errBadRequest          = &appError{http.StatusBadRequest, "Requisição inválida"}
	errInvalidAmount       = &appError{http.StatusBadRequest, "Informe um valor válido (> 0)."}
	errInsufficientBalance = &appError{http.StatusBadRequest, "Valor solicitado é maior que seu saldo disponível."}
	errInvalidPoints       = &appError{http.StatusBadRequest, "Pontos devem estar entre 1 e 10."}
	errMissingCriterio     = &appError{http.StatusBadRequest, "Informe o critério."}
	errMissingTarget       = &appError{http.StatusBadRequest, "Selecione um colaborador."}
	errSelfAward           = &appError{http.StatusBadRequest, "Não é possível pontuar a si mesmo."}
	errInvalidProfile      = &appError{http.StatusBadRequest, "Informe user_id e nome."}
	errInvalidRole         = &appError{http.StatusBadRequest, "Papel inválido."}
	errWithdrawalNotFound  = &appError{http.StatusNotFound, "Resgate não encontrado."}
	errWithdrawalDecided   = &appError{http.StatusConflict, "Resgate já foi decidido."}
	errCouponTaken         = &appError{http.StatusConflict, "Cupom já utilizado."}
)

// fail renders err, unexpected errors are logged and hidden
func (svc *rewardsSvc) fail(c echo.Context, err error) error {
	var ae *appError
	if errors.As(err, &ae) {
		return c.JSON(ae.status, common.FromKeysAndValues("error", ae.message))
	}
	svc.logger.Errorf("%s %s failed: %s", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, common.FromKeysAndValues("error", "internal error"))
}
