package extract

import (
	"fmt"

	"github.com/gumanista/hate-2-action/internal/llm"
)

const systemPrompt = "Ти — експерт з аналізу дописів в соціальних мережах українською мовою. " +
	"Витягни глибинні соціальні чи психологічні проблеми, які висловлює автор."

const schemaHint = `Відповідь має бути лише валідним JSON-об'єктом такої форми:
{
  "problems": [
    { "name": "<рядок>", "context": "<рядок>" },
    …
  ]
}`

// fewShot holds example post/answer pairs inserted into the prompt.
var fewShot = []struct {
	post   string
	answer string
}{
	{
		post: `bbc.ua — мерзенний смітник, навіть коли опрацьовує важливу тему. Редактор вирішив, що особистість актора не достатньо цікава громадськості, треба ще клікбейту додати. В коментарях любителі вау-ефекта, яким взагалі байдуже, що там за посиланням.`,
		answer: `{"problems":[` +
			`{"name":"Сенсаційність у ЗМІ","context":"Автор обурений клікабельними заголовками замість об'єктивного викладу фактів."},` +
			`{"name":"Поверхневість аудиторії","context":"Читачі реагують на заголовок, не читаючи статтю, що знижує критичне мислення."}]}`,
	},
	{
		post: `Виховання йде від батьків дитини, але і вчителі повинні проводити бесіди, звертати увагу дітей на таку проблему. Бо бездушні, та жорстокі, байдужі до дітей, яких, так би мовити, вчать.`,
		answer: `{"problems":[` +
			`{"name":"Байдужість педагогів до дітей","context":"Вчителі не підтримують емоційно учнів у кризових ситуаціях."},` +
			`{"name":"Невиконання виховної функції школи","context":"Школа не займається морально-етичним вихованням учнів."}]}`,
	},
}

// detectionPrompt builds the few-shot transcript for one message.
func detectionPrompt(message string) []llm.Message {
	msgs := []llm.Message{{Role: llm.RoleSystem, Content: systemPrompt}}
	for _, ex := range fewShot {
		msgs = append(msgs,
			llm.Message{Role: llm.RoleUser, Content: "Пост:\n" + ex.post},
			llm.Message{Role: llm.RoleAssistant, Content: ex.answer},
		)
	}
	msgs = append(msgs, llm.Message{
		Role:    llm.RoleUser,
		Content: fmt.Sprintf("Пост:\n%s\n\n%s", message, schemaHint),
	})
	return msgs
}

// repairPrompt asks the model to fix its previous, invalid JSON output.
func repairPrompt(raw string, parseErr error) []llm.Message {
	return []llm.Message{{
		Role: llm.RoleSystem,
		Content: fmt.Sprintf(
			"Попередня відповідь — невалідний JSON (%v).\nJSON був:\n```json\n%s\n```\nНадайте тільки валідний JSON за схемою:\n%s",
			parseErr, raw, schemaHint,
		),
	}}
}
