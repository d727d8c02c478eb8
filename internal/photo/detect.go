package photo

import (
	"regexp"
	"strings"
)

// Mode selects the selfie framing: a close-up shot or a full-body mirror
// selfie. Mirror shots are used when the message is about outfits.
type Mode int

const (
	ModeDirect Mode = iota
	ModeMirror
)

func (m Mode) String() string {
	if m == ModeMirror {
		return "mirror"
	}
	return "direct"
}

// selfieKeywords trigger a selfie (a shot that includes her face, generated
// against the reference image so it is always the same person).
var selfieKeywords = []string{
	"发张照片", "发个照片", "发张自拍", "发个自拍",
	"看看你", "给我看看你", "你长什么样",
	"发张图", "发个图", "拍张照",
	"想看你", "给我发照片", "发一张",
	"你在干嘛", "你在干啥", "在干嘛呢",
	"想看看你", "让我看看",
}

// sceneKeywords trigger a scene photo (no face, plain text-to-image).
var sceneKeywords = []string{
	"团团", "看看猫", "猫咪照片", "猫的照片",
	"家里照片", "你的房间", "看看你家", "你房间什么样",
	"办公室照片", "工位照片", "公司什么样",
	"窗外", "看看外面", "拍个风景",
	"你做的菜", "你做的饭", "烘焙", "蛋糕照片",
	"桌面", "你的桌子",
}

// IsSelfieRequest reports whether text asks for a photo of her.
func IsSelfieRequest(text string) bool {
	return containsAny(text, selfieKeywords)
}

// IsScenePhotoRequest reports whether text asks for a photo of her
// surroundings (the cat, the apartment, the office).
func IsScenePhotoRequest(text string) bool {
	return containsAny(text, sceneKeywords)
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

var (
	directPattern = regexp.MustCompile(`(?i)咖啡|餐厅|海边|公园|城市|近景|自拍|脸|笑|cafe|beach|park`)
	mirrorPattern = regexp.MustCompile(`(?i)穿|衣服|裙子|外套|时尚|全身|镜子|outfit|wearing|dress`)
)

// DetectMode picks the selfie framing from the message. Direct cues win over
// mirror cues; the default is a close-up.
func DetectMode(text string) Mode {
	if directPattern.MatchString(text) {
		return ModeDirect
	}
	if mirrorPattern.MatchString(text) {
		return ModeMirror
	}
	return ModeDirect
}

// Fixed environment descriptions, so every generated photo shows the same
// apartment, cat and workplace.
const (
	sceneHome    = "in a small cozy apartment with warm lighting, cream sofa and wooden floor"
	sceneBedroom = "in a bright bedroom with white bedding and fairy lights"
	sceneKitchen = "in a small home kitchen with a countertop oven and baking tools"
	sceneOffice  = "at a tidy designer desk with an iMac and a small potted plant"
	sceneWithCat = "in a small cozy apartment with warm lighting, holding a chubby orange tabby cat"
)

type sceneRule struct {
	re    *regexp.Regexp
	scene string
}

// selfieScenes maps message cues to the backdrop of a selfie. First match
// wins; the fallback is her apartment.
var selfieScenes = []sceneRule{
	{regexp.MustCompile(`(?i)猫|团团|喵|cat`), sceneWithCat},
	{regexp.MustCompile(`(?i)厨房|做饭|烘焙|烤箱|cook|bak`), sceneKitchen},
	{regexp.MustCompile(`(?i)床|睡|起床|卧室|morning|bed`), sceneBedroom},
	{regexp.MustCompile(`(?i)上班|办公|工位|公司|iMac|work|office`), sceneOffice},
	{regexp.MustCompile(`(?i)咖啡|奶茶|星巴克|cafe`), "at a cozy cafe with a cup of milk tea"},
	{regexp.MustCompile(`(?i)海边|沙滩|beach`), "at the beach with ocean background"},
	{regexp.MustCompile(`(?i)公园|散步|park`), "in a beautiful park with trees and flowers"},
	{regexp.MustCompile(`(?i)逛街|商场|mall`), "at a shopping mall, holding shopping bags"},
	{regexp.MustCompile(`(?i)穿|衣服|裙子|外套|outfit`), sceneHome + ", showing off her outfit in front of a mirror"},
	{regexp.MustCompile(`你在干嘛|干什么|在做什么`), sceneHome + ", relaxing on the cream sofa"},
	{regexp.MustCompile(`下班`), "walking on a city street in the evening, warm sunset light"},
}

// InferScene picks the selfie backdrop for a message.
func InferScene(text string) string {
	for _, r := range selfieScenes {
		if r.re.MatchString(text) {
			return r.scene
		}
	}
	return sceneHome
}

// BuildPrompt assembles the image-edit prompt for a selfie. The prompt asks
// the model to keep the reference image's face.
func BuildPrompt(text string, mode Mode) string {
	scene := InferScene(text)
	if mode == ModeMirror {
		return "make this same person taking a mirror selfie, " + scene +
			", full body visible, phone in hand, keep the same face and features, no text, no watermark, photorealistic"
	}
	return "make this same person taking a close-up selfie, " + scene +
		", direct eye contact with camera, sweet smile, phone held at arm's length, face clearly visible, keep the same face and features, no text, no watermark, photorealistic"
}

// scenePrompts maps message cues to complete text-to-image prompts for scene
// photos, which never contain a face.
var scenePrompts = []sceneRule{
	{regexp.MustCompile(`团团|猫|喵`), "a chubby orange tabby cat with white paws and round amber eyes, " + sceneHome + ", the cat is sitting on the cream sofa looking adorable, photorealistic, no text, no watermark"},
	{regexp.MustCompile(`房间|家|客厅|你家`), sceneHome + ", cozy lived-in apartment, potted plants, photo frames on wall, photorealistic, no text, no watermark"},
	{regexp.MustCompile(`卧室|床`), sceneBedroom + ", cozy and tidy, photorealistic, no text, no watermark"},
	{regexp.MustCompile(`厨房|做饭|烘焙|蛋糕`), sceneKitchen + ", freshly baked pastry on counter, photorealistic, no text, no watermark"},
	{regexp.MustCompile(`办公|工位|公司|桌`), sceneOffice + ", a creative designer workspace, photorealistic, no text, no watermark"},
	{regexp.MustCompile(`窗外|外面|风景`), "view from a 6th floor apartment window, city rooftop scenery, warm sunset light, photorealistic, no text, no watermark"},
}

// InferScenePrompt picks the full generation prompt for a scene photo.
func InferScenePrompt(text string) string {
	for _, r := range scenePrompts {
		if r.re.MatchString(text) {
			return r.scene
		}
	}
	return sceneHome + ", photorealistic, no text, no watermark"
}
