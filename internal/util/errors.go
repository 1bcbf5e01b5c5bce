package util

import "errors"

var (
	ErrUserNotFound             = errors.New("用户不存在")
	ErrEmailRegistered          = errors.New("该邮箱已被注册")
	ErrQuestionnaireNotFound    = errors.New("questionnaire not found")
	ErrQuestionnaireNotActive   = errors.New("questionnaire not active")
	ErrQuestionNotFound         = errors.New("question not found")
	ErrSessionNotFound          = errors.New("annotation session not found")
	ErrUnknownEventType         = errors.New("unknown event type")
	ErrAlreadySubmitted         = errors.New("question already submitted")
	ErrCaptchaInvalid           = errors.New("captcha verification failed")
	ErrQuestionnaireHasResponse = errors.New("questionnaire already has responses")
)
