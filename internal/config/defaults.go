package config

const (
	defaultDataDir   = "~/.local/share/reelpost/data"
	defaultVideosDir = "~/.local/share/reelpost/videos"
	defaultLogDir    = "~/.local/share/reelpost/logs"

	defaultPlatformName       = "tiktok"
	defaultEntryURL           = "https://www.tiktok.com/login"
	defaultUploadURL          = "https://www.tiktok.com/upload"
	defaultProfileURL         = "https://www.tiktok.com/@me"
	defaultAuthProbeSelector  = `[data-e2e="upload-icon"]`
	defaultFileInputSelector  = `input[type="file"]`
	defaultCaptionSelector    = `div[contenteditable="true"]`
	defaultProcessingSelector = `[data-e2e="upload-preview"]`
	defaultPostLinkSelector   = `a[href*="/video/"]`

	defaultLaunchRetries      = 3
	defaultLoginTimeout       = 600
	defaultAuthProbeTimeout   = 20
	defaultUploadTimeout      = 120
	defaultReferenceRetries   = 5
	defaultReferenceRetryWait = 3

	defaultMaxPostsPerDay       = 10
	defaultMinDelayBetweenPosts = 3600

	defaultDiscoverySource  = "demo"
	defaultShopBaseURL      = "https://open-api.tiktokglobalshop.com"
	defaultDiscoveryTimeout = 30

	defaultCaptionProvider = "template"
	defaultMaxHashtags     = 5
	defaultCaptionLength   = 2200

	defaultFFmpegBinary = "ffmpeg"
	defaultRenderWidth  = 1080
	defaultRenderHeight = 1920
	defaultRenderFPS    = 30
	defaultRenderLen    = 15
	defaultVideoBitrate = "8000k"
	defaultRenderWait   = 300

	defaultNotifyTimeout = 10

	defaultConfirmChannel = "console"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			VideosDir: defaultVideosDir,
			LogDir:    defaultLogDir,
		},
		Platform: Platform{
			Name:               defaultPlatformName,
			EntryURL:           defaultEntryURL,
			UploadURL:          defaultUploadURL,
			ProfileURL:         defaultProfileURL,
			AuthProbeSelector:  defaultAuthProbeSelector,
			FileInputSelector:  defaultFileInputSelector,
			CaptionSelector:    defaultCaptionSelector,
			ProcessingSelector: defaultProcessingSelector,
			PostLinkSelector:   defaultPostLinkSelector,
			Headless:           false,
			LaunchRetries:      defaultLaunchRetries,
			LoginTimeout:       defaultLoginTimeout,
			AuthProbeTimeout:   defaultAuthProbeTimeout,
			UploadTimeout:      defaultUploadTimeout,
			ReferenceRetries:   defaultReferenceRetries,
			ReferenceRetryWait: defaultReferenceRetryWait,
		},
		Safety: Safety{
			MaxPostsPerDay:       defaultMaxPostsPerDay,
			MinDelayBetweenPosts: defaultMinDelayBetweenPosts,
		},
		Discovery: Discovery{
			Source:             defaultDiscoverySource,
			BaseURL:            defaultShopBaseURL,
			EnrichDescriptions: false,
			RequestTimeout:     defaultDiscoveryTimeout,
		},
		Filters: Filters{
			MinPrice:          5,
			MaxPrice:          500,
			MinCommissionRate: 5,
			MinRating:         4.0,
			Categories:        []string{"Electronics", "Beauty", "Fashion", "Home", "Fitness"},
		},
		Captions: Captions{
			Provider:    defaultCaptionProvider,
			Models:      []string{"gemini-2.5-flash", "gemini-2.5-flash-lite"},
			BaseTags:    []string{"#TikTokShop", "#TikTokAffiliate", "#FoundItOnTikTok"},
			MaxHashtags: defaultMaxHashtags,
			MaxLength:   defaultCaptionLength,
		},
		Render: Render{
			FFmpegBinary: defaultFFmpegBinary,
			Width:        defaultRenderWidth,
			Height:       defaultRenderHeight,
			FPS:          defaultRenderFPS,
			Duration:     defaultRenderLen,
			VideoBitrate: defaultVideoBitrate,
			Timeout:      defaultRenderWait,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Confirm: Confirm{
			Channel: defaultConfirmChannel,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
