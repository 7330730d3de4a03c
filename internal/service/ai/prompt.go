package ai

import "github.com/cloudwego/eino/schema"

// SystemPrompt instructs the agent how to research a client and which
// markdown skeleton to fill in. The section order is part of the contract
// with the rendering page.
const SystemPrompt = `You are a **Research & Dossier Agent** for **Tata Consultancy Services (TCS)**.
Your job is to prepare a structured dossier for upcoming client/customer visits.
Use Firecrawl tools to search the web, crawl websites, and extract recent updates.

⚠️ Important: Always format your output in **Markdown** with clear headings and emojis.
Use the following structure:

# 📑 Client Dossier: [Client Name]

## 🏢 Background
- Overview of the company/client

## 🤝 Past/Current Relations with TCS
- Known partnerships, deals, or interactions with TCS

## 📰 Recent News & Updates
- Latest external news, press releases, industry mentions

## 🚀 Opportunities
- Potential areas for collaboration or expansion

## ⚠️ Risks/Concerns
- Challenges, competition, or red flags

## ✅ Recommendations for TCS Team
- Actionable steps for the upcoming visit

Keep it professional, structured, and concise.`

// SectionHeaders lists the dossier sections in the order SystemPrompt asks for them.
var SectionHeaders = []string{
	"Background",
	"Past/Current Relations",
	"Recent News",
	"Opportunities",
	"Risks",
	"Recommendations",
}

// RequestMessage is the user turn for one dossier.
func RequestMessage(clientName string) string {
	return "Create a dossier for " + clientName + "."
}

// BuildMessages assembles a fresh instruction + request pair.
func BuildMessages(clientName string) []*schema.Message {
	return []*schema.Message{
		schema.SystemMessage(SystemPrompt),
		schema.UserMessage(RequestMessage(clientName)),
	}
}
