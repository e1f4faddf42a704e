package validation

import "github.com/Kargones/authgate/internal/pkg/apperrors"

// Имена встроенных форм.
const (
	FormSignIn = "signin"
	FormSignUp = "signup"
)

// RefineFunc: проверка, которую нельзя выразить в JSON Schema
// (например сравнение двух полей). Возвращает дополнительные нарушения.
type RefineFunc func(input map[string]any) []apperrors.Issue

// Form описывает одну форму: схему, порядок полей и сообщения для пользователя.
type Form struct {
	// Name: имя, по которому форма валидируется.
	Name string

	// SchemaFile: путь к схеме внутри встроенной файловой системы schemas/.
	SchemaFile string

	// FieldOrder задаёт порядок нарушений: первым идёт нарушение поля,
	// стоящего раньше в этом списке.
	FieldOrder []string

	// Messages сопоставляет "<путь>.<keyword>" или "<путь>" с сообщением.
	// Путь корня формы: пустая строка.
	Messages map[string]string

	// Refine выполняется после схемы.
	Refine []RefineFunc
}

// SignIn: форма входа по email и паролю.
var SignIn = Form{
	Name:       FormSignIn,
	SchemaFile: "schemas/signin.schema.json",
	FieldOrder: []string{"email", "password"},
	Messages: map[string]string{
		"email.required":     "Email is required",
		"email":              "Please enter a valid email address",
		"password.required":  "Password is required",
		"password.minLength": "Password is required",
		"password.maxLength": "Password must be at most 128 characters",
		"password":           "Password is required",
	},
}

// SignUp: форма регистрации.
var SignUp = Form{
	Name:       FormSignUp,
	SchemaFile: "schemas/signup.schema.json",
	FieldOrder: []string{"name", "email", "password", "confirmPassword"},
	Messages: map[string]string{
		"name.required":            "Name is required",
		"name.minLength":           "Name must be at least 2 characters",
		"name.maxLength":           "Name must be at most 50 characters",
		"name":                     "Please enter your name",
		"email.required":           "Email is required",
		"email":                    "Please enter a valid email address",
		"password.required":        "Password is required",
		"password.minLength":       "Password must be at least 8 characters",
		"password.maxLength":       "Password must be at most 128 characters",
		"password":                 "Please enter a password",
		"confirmPassword.required": "Please confirm your password",
		"confirmPassword":          "Please confirm your password",
	},
	Refine: []RefineFunc{passwordsMatch},
}

// passwordsMatch сообщает о несовпадении password и confirmPassword.
// Если одно из полей отсутствует или не строка, об этом уже сообщила схема.
func passwordsMatch(input map[string]any) []apperrors.Issue {
	password, ok1 := input["password"].(string)
	confirm, ok2 := input["confirmPassword"].(string)
	if !ok1 || !ok2 || confirm == "" || password == confirm {
		return nil
	}
	return []apperrors.Issue{{Path: []string{"confirmPassword"}, Message: "Passwords don't match"}}
}
