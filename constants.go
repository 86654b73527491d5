package main

type Mode int

const (
	ModeStartup Mode = iota
	ModeNormal
	ModeTextInput
	ModeEditing
	ModeFileInput
	ModePrompt
	ModeFrames
	ModeStyles
	ModeConfirm
)

// PromptPurpose says what a single-line prompt is collecting.
type PromptPurpose int

const (
	PromptStyleName PromptPurpose = iota
	PromptNewFrame
	PromptFrameSize
)

type ConfirmAction int

const (
	ConfirmQuit ConfirmAction = iota
	ConfirmNewImage
	ConfirmDeleteLayer
	ConfirmDeleteFrame
	ConfirmDeleteStyle
	ConfirmCancelExport
)

const (
	panStep     = 10 // native pixels per arrow key
	fastPanStep = 50
	fontStep    = 2
	statusRows  = 1
	headerRows  = 1
	sideGap     = 1
	minEditCols = 30
)

var imagePatterns = []string{"**/*.{png,jpg,jpeg,gif,webp}", "**/*.{PNG,JPG,JPEG,GIF,WEBP}"}
