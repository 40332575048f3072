package common

// PropertyID identifies a well-known property of the native engine. The values are
// fixed by the engine.
type PropertyID int

const (
	SpeechServiceConnectionKey                PropertyID = 1000
	SpeechServiceConnectionEndpoint           PropertyID = 1001
	SpeechServiceConnectionRegion             PropertyID = 1002
	SpeechServiceAuthorizationToken           PropertyID = 1003
	SpeechServiceAuthorizationType            PropertyID = 1004
	SpeechServiceConnectionEndpointID         PropertyID = 1005
	SpeechServiceConnectionHost               PropertyID = 1006
	SpeechServiceConnectionProxyHostName      PropertyID = 1100
	SpeechServiceConnectionProxyPort          PropertyID = 1101
	SpeechServiceConnectionRecoMode           PropertyID = 3000
	SpeechServiceConnectionRecoLanguage       PropertyID = 3001
	SpeechSessionID                           PropertyID = 3002
	SpeechServiceConnectionSynthLanguage      PropertyID = 3100
	SpeechServiceConnectionSynthVoice         PropertyID = 3101
	SpeechServiceConnectionSynthOutputFormat  PropertyID = 3102
	SpeechServiceConnectionInitialSilenceMs   PropertyID = 3200
	SpeechServiceConnectionEndSilenceMs       PropertyID = 3201
	SpeechServiceConnectionEnableAudioLogging PropertyID = 3202
	// AutoDetectSourceLanguages holds the comma-separated candidates of a recognizer
	// created with language detection; AutoDetectSourceLanguageResult the detected one.
	SpeechServiceConnectionAutoDetectSourceLanguages      PropertyID = 3300
	SpeechServiceConnectionAutoDetectSourceLanguageResult PropertyID = 3301
	SpeechServiceResponseRequestDetailedResult            PropertyID = 4000
	SpeechServiceResponseProfanityFilter                  PropertyID = 4001
	SpeechServiceResponseJSONResult                       PropertyID = 5000
	SpeechServiceResponseJSONErrorDetails                 PropertyID = 5001
	CancellationDetailsReason                             PropertyID = 6000
	CancellationDetailsReasonText                         PropertyID = 6001
	CancellationDetailsReasonDetailedText                 PropertyID = 6002
	SegmentationSilenceTimeoutMs                          PropertyID = 9002
)

// SystemLanguagePropertyName tags a config with the language of the binding that
// created it. Diagnostic only.
const SystemLanguagePropertyName = "SPEECHSDK-SPEECH-CONFIG-SYSTEM-LANGUAGE"
