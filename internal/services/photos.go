// Photo service REST implementation of [AlbumService]
package services

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/imroc/req/v3"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/desertthunder/albumsync/internal/models"
	"github.com/desertthunder/albumsync/internal/shared"
)

const (
	pathUserAlbums    = "/people/{user_id}/albums"
	pathUser          = "/people/{user_id}"
	pathUploadStatus  = "/people/me/upload-status"
	pathAlbums        = "/albums"
	pathAlbum         = "/albums/{album_id}"
	pathAlbumAssets   = "/albums/{album_id}/assets"
	pathUpload        = "/upload"
	pathAsset         = "/assets/{asset_id}"
	pathAssetPerms    = "/assets/{asset_id}/permissions"
	defaultUserAgent  = "albumsync/1.0"
	defaultAssetsPage = 500
)

type albumPayload struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	PrimaryAssetID string `json:"primary_asset_id"`
	AssetCount     int    `json:"asset_count"`
}

type albumsResponse struct {
	Albums []albumPayload `json:"albums"`
}

type permissionsPayload struct {
	IsPublic    bool `json:"is_public"`
	IsFriend    bool `json:"is_friend"`
	IsFamily    bool `json:"is_family"`
	PermComment int  `json:"perm_comment"`
	PermAddMeta int  `json:"perm_addmeta"`
}

type assetPayload struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Tags        string             `json:"tags"`
	Description string             `json:"description"`
	Permissions permissionsPayload `json:"permissions"`
}

type assetsResponse struct {
	Assets []assetPayload `json:"assets"`
	Page   int            `json:"page"`
	Pages  int            `json:"pages"`
}

type createAlbumRequest struct {
	Title          string `json:"title"`
	PrimaryAssetID string `json:"primary_asset_id"`
	Description    string `json:"description"`
}

type addAssetRequest struct {
	AssetID string `json:"asset_id"`
}

type renameAlbumRequest struct {
	Title string `json:"title"`
}

type idResponse struct {
	ID string `json:"id"`
}

type userPayload struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	RealName   string `json:"realname"`
	PhotosURL  string `json:"photos_url"`
	AssetCount int    `json:"asset_count"`
}

type bandwidthPayload struct {
	Max       int64 `json:"max"`
	Used      int64 `json:"used"`
	Remaining int64 `json:"remaining"`
}

type uploadStatusPayload struct {
	Bandwidth   bandwidthPayload `json:"bandwidth"`
	FileSizeMax int64            `json:"filesize_max"`
}

func (p assetPayload) toModel() models.Asset {
	return models.Asset{
		ID:          p.ID,
		Title:       p.Title,
		Tags:        p.Tags,
		Description: p.Description,
		Permissions: models.Permissions(p.Permissions),
	}
}

// PhotoOptions configures a [PhotoService].
type PhotoOptions struct {
	BaseURL           string
	TokenSource       oauth2.TokenSource
	ConnectTimeout    time.Duration
	RequestTimeout    time.Duration
	RequestsPerSecond float64 // zero disables client-side rate limiting
	Logger            *log.Logger
}

// PhotoService implements [AlbumService] over the photo service's JSON REST API.
//
// Requests carry a bearer token from the configured [oauth2.TokenSource] and are paced by a [rate.Limiter].
// Retries are disabled: a failed call is reported once and the caller decides what to do next.
type PhotoService struct {
	client  *req.Client
	limiter *rate.Limiter
	tokens  oauth2.TokenSource
	logger  *log.Logger
}

// NewPhotoService creates a PhotoService from opts.
func NewPhotoService(opts PhotoOptions) (*PhotoService, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("%w: base url is required", shared.ErrConfiguration)
	}
	if opts.TokenSource == nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrConfiguration, shared.ErrMissingCredentials)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	s := &PhotoService{
		limiter: rate.NewLimiter(limit, 1),
		tokens:  opts.TokenSource,
		logger:  opts.Logger,
	}

	dialer := &net.Dialer{Timeout: opts.ConnectTimeout}

	s.client = req.C().
		SetBaseURL(opts.BaseURL).
		SetUserAgent(defaultUserAgent).
		SetDial(dialer.DialContext).
		SetCommonRetryCount(0).
		SetCommonErrorResult(&APIError{}).
		SetJsonMarshal(jsonMarshal).
		SetJsonUnmarshal(jsonUnmarshal).
		SetLogger(opts.Logger).
		OnBeforeRequest(s.authorize)

	if opts.RequestTimeout > 0 {
		s.client.SetTimeout(opts.RequestTimeout)
	}

	return s, nil
}

// NewPhotoServiceFromConfig builds a PhotoService using the [shared.Config] service and credential sections.
func NewPhotoServiceFromConfig(cfg *shared.Config, logger *log.Logger) (*PhotoService, error) {
	if cfg.Credentials.AccessToken == "" {
		return nil, fmt.Errorf("%w: %w: access_token", shared.ErrConfiguration, shared.ErrMissingCredentials)
	}

	return NewPhotoService(PhotoOptions{
		BaseURL:           cfg.Service.BaseURL,
		TokenSource:       oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Credentials.AccessToken}),
		ConnectTimeout:    cfg.Service.ConnectTimeout.Duration,
		RequestTimeout:    cfg.Service.RequestTimeout.Duration,
		RequestsPerSecond: cfg.Service.RequestsPerSecond,
		Logger:            logger,
	})
}

// authorize waits for the rate limiter and attaches the bearer token to every outgoing request.
func (s *PhotoService) authorize(_ *req.Client, r *req.Request) error {
	if err := s.limiter.Wait(r.Context()); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	token, err := s.tokens.Token()
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrMissingCredentials, err)
	}

	r.SetBearerAuthToken(token.AccessToken)
	return nil
}

// ListAlbums retrieves every album owned by userID.
func (s *PhotoService) ListAlbums(ctx context.Context, userID string) ([]models.Album, error) {
	var out albumsResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("user_id", userID).
		SetSuccessResult(&out).
		Get(pathUserAlbums)
	if err := handleAPIError(resp, err, "list albums"); err != nil {
		return nil, err
	}

	albums := make([]models.Album, 0, len(out.Albums))
	for _, a := range out.Albums {
		albums = append(albums, models.Album(a))
	}

	s.logger.Debug("listed albums", "user_id", userID, "count", len(albums))
	return albums, nil
}

// CreateAlbum creates an album around primaryAssetID and returns its ID.
func (s *PhotoService) CreateAlbum(ctx context.Context, title, primaryAssetID, description string) (string, error) {
	var out idResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(&createAlbumRequest{Title: title, PrimaryAssetID: primaryAssetID, Description: description}).
		SetSuccessResult(&out).
		Post(pathAlbums)
	if err := handleAPIError(resp, err, "create album"); err != nil {
		return "", err
	}

	if out.ID == "" {
		return "", fmt.Errorf("%w: create album: response missing id", shared.ErrRemoteOperation)
	}
	return out.ID, nil
}

// AddAssetToAlbum attaches assetID to albumID.
func (s *PhotoService) AddAssetToAlbum(ctx context.Context, albumID, assetID string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("album_id", albumID).
		SetBody(&addAssetRequest{AssetID: assetID}).
		Post(pathAlbumAssets)
	return s.albumError(handleAPIError(resp, err, "add asset to album"), albumID)
}

// RenameAlbum sets the title of albumID.
func (s *PhotoService) RenameAlbum(ctx context.Context, albumID, newTitle string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("album_id", albumID).
		SetBody(&renameAlbumRequest{Title: newTitle}).
		Patch(pathAlbum)
	return s.albumError(handleAPIError(resp, err, "rename album"), albumID)
}

// ListAlbumAssets pages through the assets of albumID.
//
// With full set the request asks for descriptions, which carry the content hash markers.
func (s *PhotoService) ListAlbumAssets(ctx context.Context, albumID string, full bool) ([]models.Asset, error) {
	var assets []models.Asset

	for page := 1; ; page++ {
		var out assetsResponse
		r := s.client.R().
			SetContext(ctx).
			SetPathParam("album_id", albumID).
			SetQueryParam("page", strconv.Itoa(page)).
			SetQueryParam("per_page", strconv.Itoa(defaultAssetsPage)).
			SetSuccessResult(&out)
		if full {
			r.SetQueryParam("extras", "description")
		}

		resp, err := r.Get(pathAlbumAssets)
		if err := s.albumError(handleAPIError(resp, err, "list album assets"), albumID); err != nil {
			return nil, err
		}

		for _, a := range out.Assets {
			assets = append(assets, a.toModel())
		}

		if out.Pages <= page {
			break
		}
	}

	s.logger.Debug("listed album assets", "album_id", albumID, "count", len(assets), "full", full)
	return assets, nil
}

// UploadAsset sends the file as multipart form data together with its metadata and visibility.
func (s *PhotoService) UploadAsset(ctx context.Context, upload models.UploadRequest) (string, error) {
	if upload.Content == nil {
		return "", fmt.Errorf("%w: upload %s has no content", shared.ErrInvalidInput, upload.FileName)
	}

	var out idResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetFileReader("asset", upload.FileName, upload.Content).
		SetFormData(map[string]string{
			"title":       upload.Title,
			"tags":        upload.Tags,
			"description": upload.Description,
			"is_public":   boolFlag(upload.Permissions.IsPublic),
			"is_friend":   boolFlag(upload.Permissions.IsFriend),
			"is_family":   boolFlag(upload.Permissions.IsFamily),
		}).
		SetSuccessResult(&out).
		Post(pathUpload)
	if err := handleAPIError(resp, err, "upload "+upload.FileName); err != nil {
		return "", err
	}

	if out.ID == "" {
		return "", fmt.Errorf("%w: upload %s: response missing id", shared.ErrRemoteOperation, upload.FileName)
	}
	return out.ID, nil
}

// SetAssetPermissions replaces the permissions of assetID.
func (s *PhotoService) SetAssetPermissions(ctx context.Context, assetID string, perms models.Permissions) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("asset_id", assetID).
		SetBody(permissionsPayload(perms)).
		Put(pathAssetPerms)
	return s.assetError(handleAPIError(resp, err, "set permissions"), assetID)
}

// GetAssetInfo fetches a single asset with its description and permissions.
func (s *PhotoService) GetAssetInfo(ctx context.Context, assetID string) (*models.Asset, error) {
	var out assetPayload
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("asset_id", assetID).
		SetSuccessResult(&out).
		Get(pathAsset)
	if err := s.assetError(handleAPIError(resp, err, "get asset"), assetID); err != nil {
		return nil, err
	}

	asset := out.toModel()
	return &asset, nil
}

// GetUserInfo fetches the profile of userID.
func (s *PhotoService) GetUserInfo(ctx context.Context, userID string) (*models.UserInfo, error) {
	var out userPayload
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("user_id", userID).
		SetSuccessResult(&out).
		Get(pathUser)
	if err := handleAPIError(resp, err, "get user"); err != nil {
		return nil, err
	}

	user := models.UserInfo(out)
	return &user, nil
}

// GetUploadStatus fetches the authenticated account's upload quota.
func (s *PhotoService) GetUploadStatus(ctx context.Context) (*models.UploadStatus, error) {
	var out uploadStatusPayload
	resp, err := s.client.R().
		SetContext(ctx).
		SetSuccessResult(&out).
		Get(pathUploadStatus)
	if err := handleAPIError(resp, err, "get upload status"); err != nil {
		return nil, err
	}

	return &models.UploadStatus{
		BandwidthMax:       out.Bandwidth.Max,
		BandwidthUsed:      out.Bandwidth.Used,
		BandwidthRemaining: out.Bandwidth.Remaining,
		FileSizeMax:        out.FileSizeMax,
	}, nil
}

func (s *PhotoService) albumError(err error, albumID string) error {
	if err != nil && IsNotFound(err) {
		return fmt.Errorf("%w: %s: %w", shared.ErrAlbumNotFound, albumID, err)
	}
	return err
}

func (s *PhotoService) assetError(err error, assetID string) error {
	if err != nil && IsNotFound(err) {
		return fmt.Errorf("%w: %s: %w", shared.ErrAssetNotFound, assetID, err)
	}
	return err
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

var _ AlbumService = (*PhotoService)(nil)
