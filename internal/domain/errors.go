package domain

import "errors"

// Errores de dominio (sin dependencias externas). Los casos de uso los
// retornan envueltos con fmt.Errorf("%w") y la capa HTTP los mapea a códigos.
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrInvalidState       = errors.New("operación inválida para el estado actual")
	ErrConflict           = errors.New("conflicto de concurrencia, reintentar")
	ErrCancelled          = errors.New("operación cancelada por el operador")
	ErrRenderFailed       = errors.New("falló la generación del documento")
	ErrSigningFailed      = errors.New("falló la firma del documento")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
)
