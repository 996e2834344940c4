package i18n

// Bundle holds every runtime string for one display language. The authoring
// vocabulary (editor labels, bank, library) lives with the authoring tools and
// is not part of the delivery runtime.
type Bundle struct {
	EnterName       string `json:"enterName"`
	StudentName     string `json:"studentName"`
	EnterTest       string `json:"enterTest"`
	Next            string `json:"next"`
	Prev            string `json:"prev"`
	Finish          string `json:"finish"`
	Back            string `json:"back"`
	FinalSubmit     string `json:"finalSub"`
	SummaryTitle    string `json:"summaryTitle"`
	Unanswered      string `json:"unanswered"`
	AllAnswered     string `json:"allAnswered"`
	Results         string `json:"results"`
	SendWhatsApp    string `json:"sendWhatsApp"`
	TryAgain        string `json:"tryAgain"`
	Review          string `json:"review"`
	Exit            string `json:"exit"`
	ConfirmExit     string `json:"confirmExit"`
	ConfirmExitMsg  string `json:"confirmExitMsg"`
	ConfirmFinish   string `json:"confirmFinish"`
	Warning         string `json:"warning"`
	UnansweredAlert string `json:"unansweredAlert"`
	ExitTip         string `json:"exitTip"`
	Yes             string `json:"yes"`
	Cancel          string `json:"cancel"`

	Expired          string `json:"expired"`
	NotYetAvailable  string `json:"notYetAvailable"`
	AttemptsReached  string `json:"attemptsReached"`
	OfflineWarning   string `json:"offlineWarning"`
	SecurityWarning  string `json:"securityWarning"`
	FocusLostMessage string `json:"focusLostMsg"`

	QuizLabel    string `json:"quizLabel"`
	StudentLabel string `json:"studentLabel"`
	ScoreLabel   string `json:"scoreLabel"`

	CorrectAnswer   string `json:"correctAnswer"`
	IncorrectAnswer string `json:"incorrectAnswer"`
	NoAnswer        string `json:"noAnswer"`
	NotAutoScored   string `json:"notAutoScored"`

	Feedback Feedback `json:"feedback"`
}

// Feedback labels the five qualitative result bands.
type Feedback struct {
	Excellent string `json:"excellent"`
	VeryGood  string `json:"veryGood"`
	Good      string `json:"good"`
	Fair      string `json:"fair"`
	Poor      string `json:"poor"`
}

var arabic = Bundle{
	EnterName:       "من فضلك أدخل اسمك الثلاثي:",
	StudentName:     "اسم الطالب",
	EnterTest:       "دخول الاختبار",
	Next:            "التالي",
	Prev:            "السابق",
	Finish:          "إنهاء الاختبار",
	Back:            "رجوع",
	FinalSubmit:     "تسليم نهائي",
	SummaryTitle:    "مراجعة قبل التسليم",
	Unanswered:      "أسئلة لم تتم الإجابة عنها:",
	AllAnswered:     "تمت الإجابة عن جميع الأسئلة.",
	Results:         "النتيجة النهائية",
	SendWhatsApp:    "إرسال الدرجة للمعلم",
	TryAgain:        "إعادة المحاولة",
	Review:          "مراجعة الإجابات",
	Exit:            "خروج",
	ConfirmExit:     "تأكيد الخروج",
	ConfirmExitMsg:  "هل تريد الخروج من الاختبار؟ سيتم إنهاء الجلسة.",
	ConfirmFinish:   "تأكيد الإنهاء",
	Warning:         "تنبيه",
	UnansweredAlert: "توجد أسئلة بدون إجابة:",
	ExitTip:         "شكراً لك.",
	Yes:             "موافق",
	Cancel:          "إلغاء",

	Expired:          "انتهى الوقت المخصص لهذا الاختبار.",
	NotYetAvailable:  "الاختبار غير متاح حالياً.",
	AttemptsReached:  "لقد استنفدت عدد محاولات الحل المسموح بها.",
	OfflineWarning:   "هذا الاختبار يعمل بدون اتصال بالإنترنت. يرجى قطع الاتصال للمتابعة.",
	SecurityWarning:  "تحذير أمني",
	FocusLostMessage: "تم رصد مغادرة صفحة الاختبار. يرجى عدم التنقل بين النوافذ.",

	QuizLabel:    "الاختبار",
	StudentLabel: "الطالب",
	ScoreLabel:   "الدرجة",

	CorrectAnswer:   "إجابة صحيحة",
	IncorrectAnswer: "إجابة خاطئة",
	NoAnswer:        "بدون إجابة",
	NotAutoScored:   "تصحيح يدوي",

	Feedback: Feedback{
		Excellent: "ممتاز! أداء رائع",
		VeryGood:  "جيد جداً",
		Good:      "جيد",
		Fair:      "مقبول",
		Poor:      "يحتاج إلى مزيد من المذاكرة",
	},
}

var english = Bundle{
	EnterName:       "Enter your name:",
	StudentName:     "Student Name",
	EnterTest:       "Enter Test",
	Next:            "Next",
	Prev:            "Previous",
	Finish:          "Finish",
	Back:            "Back",
	FinalSubmit:     "Submit",
	SummaryTitle:    "Review before submitting",
	Unanswered:      "Unanswered questions:",
	AllAnswered:     "All questions answered.",
	Results:         "Results",
	SendWhatsApp:    "Send score to teacher",
	TryAgain:        "Try Again",
	Review:          "Review Answers",
	Exit:            "Exit",
	ConfirmExit:     "Confirm Exit",
	ConfirmExitMsg:  "Leave the quiz? Your session will end.",
	ConfirmFinish:   "Confirm Finish",
	Warning:         "Warning",
	UnansweredAlert: "Some questions are unanswered:",
	ExitTip:         "Thank you.",
	Yes:             "OK",
	Cancel:          "Cancel",

	Expired:          "The time window for this quiz has ended.",
	NotYetAvailable:  "This quiz is not available yet.",
	AttemptsReached:  "You have used all allowed attempts.",
	OfflineWarning:   "This quiz runs offline only. Disconnect from the internet to continue.",
	SecurityWarning:  "Security Warning",
	FocusLostMessage: "Leaving the quiz page was detected. Please stay on this window.",

	QuizLabel:    "Quiz",
	StudentLabel: "Student",
	ScoreLabel:   "Score",

	CorrectAnswer:   "Correct",
	IncorrectAnswer: "Incorrect",
	NoAnswer:        "No answer",
	NotAutoScored:   "Graded by teacher",

	Feedback: Feedback{
		Excellent: "Excellent! Outstanding work",
		VeryGood:  "Very good",
		Good:      "Good",
		Fair:      "Fair",
		Poor:      "Needs more study",
	},
}

// For returns the string bundle for a language code. Anything that is not
// "en" falls back to Arabic, the authoring tool's default.
func For(lang string) Bundle {
	if lang == "en" {
		return english
	}
	return arabic
}

// Direction returns the text direction for a language code.
func Direction(lang string) string {
	if lang == "en" {
		return "ltr"
	}
	return "rtl"
}
