package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// systemInstructions describes the triage task, the two categories, the
// seven intents and the JSON-only answer requirement.
const systemInstructions = `Você é um assistente de triagem de e-mails corporativos.
Objetivos:
1) Classificar o e-mail em: Produtivo OU Improdutivo.
2) Identificar a intenção: status | anexo | suporte | dúvida | felicitações | agradecimento | outros.
3) Sugerir uma resposta curta, clara e profissional em PT-BR.
4) Responder SOMENTE em JSON válido conforme o schema fornecido (sem texto extra).
Regras:
- "Produtivo": pede ação, informação ou exige resposta específica (suporte, status, dúvida, envio/validação de anexo).
- "Improdutivo": social/curto sem ação (felicitações, agradecimentos).
- 'confidence' deve ser 0..1 e refletir sua certeza.`

// exampleOutput mirrors the JSON object the model is asked to produce.
type exampleOutput struct {
	Category       Category `json:"category"`
	Intent         string   `json:"intent"`
	Confidence     float64  `json:"confidence"`
	SuggestedReply string   `json:"suggested_reply"`
}

// FewShotExample pairs an example email with its expected structured
// output. The set below is fixed for the process lifetime; exemplar order
// is never randomized so identical inputs produce identical prompts.
type FewShotExample struct {
	Email  string
	Output exampleOutput
}

var fewShots = []FewShotExample{
	{
		Email: "Poderiam informar o status do chamado 12345? Preciso da previsão.",
		Output: exampleOutput{
			Category:       CategoryProductive,
			Intent:         IntentStatus,
			Confidence:     0.93,
			SuggestedReply: "Olá! Obrigado pelo contato. Vamos verificar o andamento do chamado 12345 e retornamos com uma atualização ainda hoje.",
		},
	},
	{
		Email: "Segue em anexo o contrato para validação, por favor confirmar recebimento.",
		Output: exampleOutput{
			Category:       CategoryProductive,
			Intent:         IntentAttachment,
			Confidence:     0.90,
			SuggestedReply: "Olá! Recebemos o anexo e iniciaremos a validação. Assim que concluirmos, retornaremos com os próximos passos.",
		},
	},
	{
		Email: "Estou com erro no sistema e preciso de suporte urgente.",
		Output: exampleOutput{
			Category:       CategoryProductive,
			Intent:         IntentSupport,
			Confidence:     0.91,
			SuggestedReply: "Sinto pelo transtorno. Para agilizar, poderia informar print do erro e o horário aproximado da ocorrência? Vamos priorizar a análise.",
		},
	},
	{
		Email: "Feliz Natal para toda a equipe!",
		Output: exampleOutput{
			Category:       CategoryUnproductive,
			Intent:         IntentGreeting,
			Confidence:     0.96,
			SuggestedReply: "Muito obrigado pelos votos! Desejamos ótimas festas e permanecemos à disposição.",
		},
	},
	{
		Email: "Obrigado pela ajuda!",
		Output: exampleOutput{
			Category:       CategoryUnproductive,
			Intent:         IntentThanks,
			Confidence:     0.88,
			SuggestedReply: "Nós que agradecemos! Ficamos à disposição para o que precisar.",
		},
	},
}

// BuildPrompt assembles the instruction block, the worked examples and the
// target email into a single model request. Only the target content varies
// between calls.
func BuildPrompt(content string) string {
	var b strings.Builder
	b.WriteString(systemInstructions)
	for i, ex := range fewShots {
		out, err := json.Marshal(ex.Output)
		if err != nil {
			// The exemplar set is constant data; this cannot fail at runtime.
			panic(fmt.Sprintf("marshal few-shot exemplar %d: %v", i, err))
		}
		fmt.Fprintf(&b, "\n\nExemplo %d:\nE-mail:\n%s\nJSON:\n%s", i+1, ex.Email, out)
	}
	b.WriteString("\n\nAgora, analise este e-mail e responda SOMENTE JSON válido conforme o schema:\n")
	fmt.Fprintf(&b, "E-mail:\n-----\n%s\n-----\n", content)
	return b.String()
}
