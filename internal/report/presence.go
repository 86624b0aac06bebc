package report

type PresenceInfo struct {
	Emoji       string
	Description string
}

var presenceMap = map[string]PresenceInfo{
	"Available":               {"🟢", "Disponível"},
	"AvailableIdle":           {"🟡", "Disponível (Ausente)"},
	"Away":                    {"🟡", "Ausente"},
	"BeRightBack":             {"🟡", "Volto Logo"},
	"Busy":                    {"🔴", "Ocupado"},
	"BusyIdle":                {"🔴", "Ocupado (Ausente)"},
	"DoNotDisturb":            {"⛔", "Não Perturbe"},
	"InACall":                 {"📞", "Em Chamada"},
	"InAConferenceCall":       {"📞", "Em Conferência"},
	"Inactive":                {"⚪", "Inativo"},
	"InAMeeting":              {"📅", "Em Reunião"},
	"Offline":                 {"⚫", "Offline"},
	"OffWork":                 {"🏠", "Fora do Trabalho"},
	"OutOfOffice":             {"✈️", "Fora do Escritório"},
	"PresenceUnknown":         {"❓", "Desconhecido"},
	"Presenting":              {"🖥️", "Apresentando"},
	"UrgentInterruptionsOnly": {"🚨", "Apenas Urgências"},
}

// LookupPresence maps a Graph availability value. Unmapped values keep the
// raw value as description.
func LookupPresence(availability string) PresenceInfo {
	if info, ok := presenceMap[availability]; ok {
		return info
	}
	return PresenceInfo{Emoji: "❓", Description: availability}
}
