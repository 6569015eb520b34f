// Package access es el único punto que decide si una identidad puede leer o
// escribir un gato. Ningún módulo re-deriva permisos por su cuenta.
package access

import (
	"context"
	"fmt"
	"strings"

	"cat-care/internal/platform/apperr"
	"cat-care/internal/ports/auth"
)

var (
	ErrMissingCatID = apperr.BadRequest("missing_cat_id")
	ErrForbidden    = apperr.ErrForbidden
	ErrCatNotFound  = apperr.ErrNotFound
)

// CatOwners resuelve el dueño de un gato. found=false si el gato no existe.
type CatOwners interface {
	OwnerOf(ctx context.Context, catID string) (ownerID string, found bool, err error)
	ListIDsByOwner(ctx context.Context, ownerID string) ([]string, error)
}

// CaregiverLinks es la vista de solo lectura del registro de cuidadores.
type CaregiverLinks interface {
	IsAssigned(ctx context.Context, catID, userID string) (bool, error)
	ListCatIDsByUser(ctx context.Context, userID string) ([]string, error)
}

type Evaluator struct {
	cats  CatOwners
	links CaregiverLinks
}

func NewEvaluator(cats CatOwners, links CaregiverLinks) *Evaluator {
	return &Evaluator{cats: cats, links: links}
}

// CanAccess: admin => true sin tocar el store. Si no, dueño o cuidador asignado.
// Un gato inexistente da false.
func (e *Evaluator) CanAccess(ctx context.Context, id auth.Identity, catID string) (bool, error) {
	if id.IsAdmin() {
		return true, nil
	}
	if !id.Valid() || strings.TrimSpace(catID) == "" {
		return false, nil
	}

	ownerID, found, err := e.cats.OwnerOf(ctx, catID)
	if err != nil {
		return false, fmt.Errorf("access: owner of %s: %w", catID, err)
	}
	if !found {
		return false, nil
	}
	if ownerID == id.UserID {
		return true, nil
	}

	assigned, err := e.links.IsAssigned(ctx, catID, id.UserID)
	if err != nil {
		return false, fmt.Errorf("access: caregiver link: %w", err)
	}
	return assigned, nil
}

// Authorize es CanAccess con el vocabulario de errores de la API.
// Para no-admins un gato inexistente es 403 (mismo resultado que sin permiso);
// para admins es 404 porque ahí no hay nada que ocultar.
func (e *Evaluator) Authorize(ctx context.Context, id auth.Identity, catID string) error {
	if !id.Valid() {
		return apperr.ErrUnauthorized
	}
	if strings.TrimSpace(catID) == "" {
		return ErrMissingCatID
	}

	if id.IsAdmin() {
		_, found, err := e.cats.OwnerOf(ctx, catID)
		if err != nil {
			return fmt.Errorf("access: owner of %s: %w", catID, err)
		}
		if !found {
			return ErrCatNotFound
		}
		return nil
	}

	ok, err := e.CanAccess(ctx, id, catID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// AuthorizeManage: solo dueño o admin (gestión de cuidadores, fotos, borrar gato).
// Devuelve el ownerID para que el caller no tenga que volver a leerlo.
// Mismo criterio que Authorize: gato inexistente es 404 solo para admins.
func (e *Evaluator) AuthorizeManage(ctx context.Context, id auth.Identity, catID string) (string, error) {
	if !id.Valid() {
		return "", apperr.ErrUnauthorized
	}
	if strings.TrimSpace(catID) == "" {
		return "", ErrMissingCatID
	}

	ownerID, found, err := e.cats.OwnerOf(ctx, catID)
	if err != nil {
		return "", fmt.Errorf("access: owner of %s: %w", catID, err)
	}
	if !found {
		if id.IsAdmin() {
			return "", ErrCatNotFound
		}
		return "", ErrForbidden
	}
	if !id.IsAdmin() && ownerID != id.UserID {
		return "", ErrForbidden
	}
	return ownerID, nil
}

// MemberCatIDs: gatos propios + asignados, sin duplicados.
func (e *Evaluator) MemberCatIDs(ctx context.Context, userID string) ([]string, error) {
	owned, err := e.cats.ListIDsByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("access: owned cats: %w", err)
	}
	cared, err := e.links.ListCatIDsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("access: cared cats: %w", err)
	}

	seen := make(map[string]struct{}, len(owned)+len(cared))
	out := make([]string, 0, len(owned)+len(cared))
	for _, ids := range [][]string{owned, cared} {
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out, nil
}

// VisibleCatIDs es el mismo predicado que CanAccess pero como conjunto.
// all=true significa "todos los gatos" (admin) y ids viene vacío.
func (e *Evaluator) VisibleCatIDs(ctx context.Context, id auth.Identity) (ids []string, all bool, err error) {
	if id.IsAdmin() {
		return nil, true, nil
	}
	if !id.Valid() {
		return nil, false, apperr.ErrUnauthorized
	}
	ids, err = e.MemberCatIDs(ctx, id.UserID)
	return ids, false, err
}
