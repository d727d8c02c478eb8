package photo

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"regexp"
)

// In-character texts around photo delivery.
const (
	selfieLead       = "等一下哦，我拍一张给你～📸"
	sceneLead        = "等等哦，我拍一张📸"
	selfieDisabled   = "嘿嘿，我现在在家穿着睡衣呢，不好意思拍啦😝"
	sceneDisabled    = "手机没电了拍不了😭 下次给你拍！"
	selfieFailedText = "啊...手机摄像头好像坏了😭 下次再拍给你吧"
	sceneFailedText  = "拍了但是太模糊了...手抖了😅"
)

var selfieCaptions = []string{
	"看看，好看嘛😊",
	"拍了好几张选的这张！",
	"嘿嘿，怎么样～",
	"给你拍的哦❤️",
	"凑合看吧哈哈",
}

type captionPool struct {
	re       *regexp.Regexp
	captions []string
}

// sceneCaptions matches the caption to what was photographed. First match
// wins; the last entry is the catch-all.
var sceneCaptions = []captionPool{
	{regexp.MustCompile(`团团|猫|喵`), []string{
		"看！团团今天超乖的🐱",
		"它又在犯困了哈哈",
		"这小胖子今天偷吃了我的零食😤",
	}},
	{regexp.MustCompile(`房间|家|客厅`), []string{
		"我家虽然小但是很温馨吧～",
		"刚收拾完的！",
		"嘿嘿，还行吧",
	}},
	{regexp.MustCompile(`办公|工位|公司`), []string{
		"这就是我的工位啦～",
		"今天办公室没什么人",
		"我的工位最乱哈哈",
	}},
	{regexp.MustCompile(`厨房|烘焙|做饭|蛋糕`), []string{
		"看我今天的成果！",
		"虽然卖相不行但味道还行...吧",
		"这次没翻车！",
	}},
	{nil, []string{
		"给你拍了一张～",
		"看看！",
		"拍了一张哦",
	}},
}

// Reply is the outcome of a photo request: an optional lead-in message, an
// optional image, and a closing caption. When no image could be produced the
// caption carries the excuse, so there is always something to send.
type Reply struct {
	Lead     string
	ImageURL string
	Caption  string
}

// Service turns photo requests into deliverable replies. It never returns
// an error to the caller: a disabled feature or a failed generation becomes
// an in-character excuse.
type Service struct {
	client *Client
	logger *slog.Logger

	// pick selects a caption index, overridable in tests.
	pick func(n int) int
}

// NewService wraps client. logger may be nil.
func NewService(client *Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client: client,
		logger: logger,
		pick:   rand.IntN,
	}
}

// Enabled reports whether real images can be produced.
func (s *Service) Enabled() bool {
	return s.client.Enabled()
}

// Download fetches a generated image's bytes for delivery.
func (s *Service) Download(ctx context.Context, imageURL string) ([]byte, error) {
	return s.client.Download(ctx, imageURL)
}

// Selfie handles a selfie request end to end.
func (s *Service) Selfie(ctx context.Context, text string) Reply {
	if !s.Enabled() {
		return Reply{Caption: selfieDisabled}
	}

	url, err := s.client.GenerateSelfie(ctx, text)
	if err != nil {
		s.logger.Error("photo: selfie generation failed", "error", err)
		return Reply{Lead: selfieLead, Caption: selfieFailedText}
	}
	return Reply{
		Lead:     selfieLead,
		ImageURL: url,
		Caption:  selfieCaptions[s.pick(len(selfieCaptions))],
	}
}

// ScenePhoto handles a scene photo request end to end.
func (s *Service) ScenePhoto(ctx context.Context, text string) Reply {
	if !s.Enabled() {
		return Reply{Caption: sceneDisabled}
	}

	pool := sceneCaptionsFor(text)
	url, err := s.client.GenerateScenePhoto(ctx, text)
	if err != nil {
		s.logger.Error("photo: scene photo generation failed", "error", err)
		return Reply{Lead: sceneLead, Caption: sceneFailedText}
	}
	return Reply{
		Lead:     sceneLead,
		ImageURL: url,
		Caption:  pool[s.pick(len(pool))],
	}
}

func sceneCaptionsFor(text string) []string {
	for _, p := range sceneCaptions {
		if p.re == nil || p.re.MatchString(text) {
			return p.captions
		}
	}
	return sceneCaptions[len(sceneCaptions)-1].captions
}
