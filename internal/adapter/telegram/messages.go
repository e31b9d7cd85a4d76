package telegram

import (
	"fmt"
	"strconv"

	"github.com/couchcryptid/psychrometer-service/internal/domain"
)

const (
	callbackManual = "manual_input"
	callbackPhoto  = "photo_input"
)

const welcomeText = `🌡️ *Добро пожаловать в бот-помощник по психрометру ВИТ-1!*

Я специализированный бот для определения влажности воздуха с помощью психрометра ВИТ-1.

*Что я умею:*
• Рассчитывать относительную влажность воздуха по показаниям сухого и влажного термометров
• Анализировать фотографии психрометра и определять параметры
• Работать как с ручным вводом данных, так и с фотографиями

*Доступные команды:*
/calculation - начать расчет влажности
/start - показать это сообщение

Для начала работы используйте команду /calculation`

const (
	modeMenuText = "Выберите тип ввода данных:"
	manualButton = "📝 Вручную"
	photoButton  = "📷 Фото"

	manualPromptText = "Введите показания термометров в формате:\n" +
		"Tсух Tвлажн\n\n" +
		"Например: 20 15\n" +
		"(где 20 - температура сухого термометра, 15 - влажного)"
	photoPromptText = "Отправьте фотографию психрометра ВИТ-1.\n" +
		"Я проанализирую изображение и определю показания термометров."
	photoUnavailableText = "📷 Распознавание фотографий сейчас не настроено.\n" +
		"Используйте ручной ввод: /calculation"

	helpText = "Используйте команды:\n" +
		"/start - информация о боте\n" +
		"/calculation - начать расчет влажности"

	manualFormatText = "Неверный формат! Введите два числа через пробел:\n" +
		"Tсух Tвлажн\n\n" +
		"Например: 20 15"
	manualNumberText = "Ошибка: введите корректные числовые значения!\n" +
		"Формат: Tсух Tвлажн\n\n" +
		"Например: 20 15"

	calculatingText    = "🔍 Рассчитываю влажность..."
	analyzingPhotoText = "🔍 Анализирую фотографию..."

	orderingText     = "Ошибка: показание влажного термометра не может быть больше показания сухого термометра!"
	noDataText       = "❌ Данных в таблице нет, нужна психрометрическая формула для точного расчёта"
	invalidInputText = "❌ Ошибка: показания термометров должны быть конечными числами"

	unreadablePhotoText = "❌ Ошибка анализа фото: не удалось определить показания термометров"
	malformedPhotoText  = "❌ Ошибка анализа фото: не удалось извлечь показания из ответа"
	photoFailedText     = "Ошибка при обработке фото: сервис распознавания недоступен, попробуйте позже"
)

// resultText renders a calculation result for chat. Successful results use Markdown.
func resultText(res domain.Result) (text string, markdown bool) {
	if res.Success {
		return fmt.Sprintf("🌡️ *Результат расчета:*\n\n"+
			"Температура воздуха: %s °C\n"+
			"Разница: ΔT = %s °C\n"+
			"Влажность ≈ %.1f%%",
			formatTemp(res.TDry), formatTemp(res.DeltaT), res.Humidity), true
	}

	switch res.Kind {
	case domain.KindOrderingViolation:
		return orderingText, false
	case domain.KindNoDataForRange:
		return noDataText, false
	case domain.KindUpstreamParseFailure:
		return malformedPhotoText, false
	default:
		return invalidInputText, false
	}
}

func transcribedText(r domain.Reading) string {
	return fmt.Sprintf("📷 *Анализ фотографии:*\n\n"+
		"Показание сухого термометра: %s°C\n"+
		"Показание влажного термометра: %s°C\n\n"+
		"🔍 Рассчитываю влажность по таблице...",
		formatTemp(r.TDry), formatTemp(r.TWet))
}

func formatTemp(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
