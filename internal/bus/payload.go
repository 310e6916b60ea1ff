package bus

import "strings"

// PayloadPrefix marks button payloads that belong to a plugin.
const PayloadPrefix = "[PLUGIN]"

// EncodePayload builds the callback payload for a plugin button.
func EncodePayload(pluginID, data string) string {
	return PayloadPrefix + pluginID + "|" + data
}

// DecodePayload splits a raw button payload into plugin id and data. It reports
// false for payloads that were not produced by EncodePayload.
func DecodePayload(raw string) (pluginID, data string, ok bool) {
	rest, found := strings.CutPrefix(raw, PayloadPrefix)
	if !found {
		return "", "", false
	}
	pluginID, data, found = strings.Cut(rest, "|")
	if !found || pluginID == "" {
		return "", "", false
	}
	return pluginID, data, true
}

// CallbackFromPayload turns a raw button payload into a CallbackEvent addressed
// to the given origin.
func CallbackFromPayload(raw string, origin Origin) (CallbackEvent, bool) {
	pluginID, data, ok := DecodePayload(raw)
	if !ok {
		return CallbackEvent{}, false
	}
	return CallbackEvent{
		PluginID: pluginID,
		Channel:  origin.Channel,
		ChatID:   origin.ChatID,
		UserID:   origin.UserID,
		Data:     data,
	}, true
}
