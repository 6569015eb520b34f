package users

import (
	"net/http"
	"time"

	"cat-care/internal/middleware"
	"cat-care/internal/platform/httpjson"
	"cat-care/internal/platform/logger"
	"cat-care/internal/platform/upload"

	"github.com/go-chi/chi/v5"
)

type Handlers struct {
	svc *Service
	log logger.Logger
}

func NewHandlers(svc *Service, log logger.Logger) *Handlers {
	return &Handlers{svc: svc, log: log.With(map[string]any{"module": "admin"})}
}

type createUserRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	Password  string `json:"password"`
}

type updateUserRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	NewPassword string `json:"new_password"`
}

type accountRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type blockRequest struct {
	Blocked bool `json:"blocked"`
}

// userResponse nunca incluye el hash.
type userResponse struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Role        string     `json:"role"`
	IsBlocked   bool       `json:"is_blocked"`
	AvatarPath  string     `json:"avatar_path,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

type statsResponse struct {
	TotalUsers   int `json:"total_users"`
	AdminUsers   int `json:"admin_users"`
	BlockedUsers int `json:"blocked_users"`
}

func toUserResponse(u User) userResponse {
	return userResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        string(u.Role),
		IsBlocked:   u.IsBlocked,
		AvatarPath:  u.AvatarPath,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

// List godoc
// @Summary Listar usuarios
// @Description Solo admin. Más nuevos primero, máx 500.
// @Tags admin
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Role header string false "Solo en modo dev, user|admin"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {object} httpjson.ItemsResponse[userResponse]
// @Failure 403 {object} httpjson.ErrorResponse
// @Router /admin/users [get]
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context(), middleware.GetIdentity(r.Context()))
	if err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	out := make([]userResponse, 0, len(items))
	for _, u := range items {
		out = append(out, toUserResponse(u))
	}
	httpjson.Items(w, out)
}

// Create godoc
// @Summary Crear usuario
// @Description Solo admin. Valida formato de username/email/nombre y la política de contraseñas.
// @Tags admin
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Role header string false "Solo en modo dev, user|admin"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body createUserRequest true "Usuario"
// @Success 201 {object} userResponse
// @Failure 400 {object} httpjson.ErrorResponse "invalid_username / invalid_email / invalid_name / invalid_role / weak_password"
// @Failure 403 {object} httpjson.ErrorResponse
// @Failure 409 {object} httpjson.ErrorResponse "already_exists"
// @Router /admin/users [post]
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	u, err := h.svc.Create(r.Context(), middleware.GetIdentity(r.Context()), CreateInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		Password:  req.Password,
	})
	if err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, toUserResponse(u))
}

// Update godoc
// @Summary Actualizar usuario
// @Description Solo admin. Nombre obligatorio; new_password opcional (misma política).
// @Tags admin
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Role header string false "Solo en modo dev, user|admin"
// @Param Authorization header string false "Bearer token en producción"
// @Param userID path string true "ID del usuario"
// @Param payload body updateUserRequest true "Cambios"
// @Success 200 {object} userResponse
// @Failure 400 {object} httpjson.ErrorResponse
// @Failure 404 {object} httpjson.ErrorResponse
// @Router /admin/users/{userID} [put]
func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	u, err := h.svc.Update(r.Context(), middleware.GetIdentity(r.Context()), chi.URLParam(r, "userID"), UpdateInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, toUserResponse(u))
}

// Block godoc
// @Summary Bloquear/desbloquear usuario
// @Description Solo admin. No se puede sobre uno mismo ni sobre la cuenta admin por defecto.
// @Tags admin
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Role header string false "Solo en modo dev, user|admin"
// @Param Authorization header string false "Bearer token en producción"
// @Param userID path string true "ID del usuario"
// @Param payload body blockRequest true "Nuevo estado"
// @Success 200 {object} httpjson.OKResponse
// @Failure 400 {object} httpjson.ErrorResponse "cannot_block_self"
// @Failure 403 {object} httpjson.ErrorResponse "protected_account"
// @Failure 404 {object} httpjson.ErrorResponse
// @Router /admin/users/{userID}/block [post]
func (h *Handlers) Block(w http.ResponseWriter, r *http.Request) {
	var req blockRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	if err := h.svc.Block(r.Context(), middleware.GetIdentity(r.Context()), chi.URLParam(r, "userID"), req.Blocked); err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	httpjson.OK(w)
}

// Delete godoc
// @Summary Borrar usuario
// @Description Solo admin. Borra en una transacción sus gatos (con actividades, fotos y cuidadores) y sus vínculos de cuidador.
// @Tags admin
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Role header string false "Solo en modo dev, user|admin"
// @Param Authorization header string false "Bearer token en producción"
// @Param userID path string true "ID del usuario"
// @Success 200 {object} httpjson.OKResponse
// @Failure 400 {object} httpjson.ErrorResponse "cannot_delete_self / cannot_delete_last_admin"
// @Failure 403 {object} httpjson.ErrorResponse "protected_account"
// @Failure 404 {object} httpjson.ErrorResponse
// @Failure 500 {object} httpjson.ErrorResponse "delete_failed"
// @Router /admin/users/{userID} [delete]
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), middleware.GetIdentity(r.Context()), chi.URLParam(r, "userID")); err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	httpjson.OK(w)
}

// Stats godoc
// @Summary Estadísticas de usuarios
// @Tags admin
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Role header string false "Solo en modo dev, user|admin"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {object} statsResponse
// @Failure 403 {object} httpjson.ErrorResponse
// @Router /admin/stats [get]
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context(), middleware.GetIdentity(r.Context()))
	if err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, statsResponse{
		TotalUsers:   st.TotalUsers,
		AdminUsers:   st.AdminUsers,
		BlockedUsers: st.BlockedUsers,
	})
}

// Me godoc
// @Summary Mi cuenta
// @Tags account
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {object} userResponse
// @Failure 401 {object} httpjson.ErrorResponse
// @Failure 404 {object} httpjson.ErrorResponse
// @Router /me [get]
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Me(r.Context(), middleware.GetIdentity(r.Context()))
	if err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, toUserResponse(u))
}

// UpdateMe godoc
// @Summary Actualizar mi cuenta
// @Description JSON o multipart/form-data (mismos campos más el archivo "avatar"). Nombre y apellido van juntos; new_password exige old_password. Todo se guarda en una transacción.
// @Tags account
// @Accept json,mpfd
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body accountRequest false "Cambios"
// @Success 200 {object} userResponse
// @Failure 400 {object} httpjson.ErrorResponse "invalid_name / missing_password / invalid_old_password / weak_password / invalid_file / file_too_large"
// @Failure 401 {object} httpjson.ErrorResponse
// @Router /me [put]
func (h *Handlers) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var in AccountInput
	if upload.IsMultipart(r) {
		file, err := upload.FormFile(w, r, "avatar")
		if err != nil {
			httpjson.Error(w, r, h.log, err)
			return
		}
		if file != nil {
			defer file.Close()
			in.Avatar = file
		}
		in.FirstName = r.FormValue("first_name")
		in.LastName = r.FormValue("last_name")
		in.OldPassword = r.FormValue("old_password")
		in.NewPassword = r.FormValue("new_password")
	} else {
		var req accountRequest
		if err := httpjson.Decode(r, &req); err != nil {
			httpjson.Error(w, r, h.log, err)
			return
		}
		in = AccountInput{FirstName: req.FirstName, LastName: req.LastName, OldPassword: req.OldPassword, NewPassword: req.NewPassword}
	}

	u, err := h.svc.UpdateAccount(r.Context(), middleware.GetIdentity(r.Context()), in)
	if err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, toUserResponse(u))
}

// Avatar godoc
// @Summary Subir mi avatar
// @Description multipart/form-data, campo "avatar". jpeg/png/webp hasta 5 MiB. Reemplaza el anterior.
// @Tags account
// @Accept mpfd
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param avatar formData file true "Imagen"
// @Success 200 {object} userResponse
// @Failure 400 {object} httpjson.ErrorResponse "invalid_file / file_too_large"
// @Failure 401 {object} httpjson.ErrorResponse
// @Router /me/avatar [post]
func (h *Handlers) Avatar(w http.ResponseWriter, r *http.Request) {
	file, err := upload.FormFile(w, r, "avatar")
	if err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	if file == nil {
		httpjson.Error(w, r, h.log, upload.ErrInvalidFile)
		return
	}
	defer file.Close()

	u, err := h.svc.SetAvatar(r.Context(), middleware.GetIdentity(r.Context()), file)
	if err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, toUserResponse(u))
}

// Register godoc
// @Summary Registro
// @Description Público. Crea una cuenta con rol user; mismas validaciones que el alta de admin.
// @Tags account
// @Accept json
// @Produce json
// @Param payload body registerRequest true "Cuenta"
// @Success 201 {object} userResponse
// @Failure 400 {object} httpjson.ErrorResponse "invalid_username / invalid_email / invalid_name / password_mismatch / weak_password"
// @Failure 409 {object} httpjson.ErrorResponse "already_exists"
// @Router /register [post]
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	u, err := h.svc.Register(r.Context(), RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		httpjson.Error(w, r, h.log, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, toUserResponse(u))
}
