package control

import (
	"fmt"

	"github.com/mmhmddd/PowerEV-sub000/internal/backend"
)

// Localized toast and fallback messages. The backend's own message wins
// when it sends one; these cover the rest.
const (
	msgLoadFailed   = "حدث خطأ أثناء تحميل البيانات"
	msgSaveFailed   = "حدث خطأ أثناء حفظ البيانات"
	msgSaved        = "تم الحفظ بنجاح"
	msgDeleteFailed = "حدث خطأ أثناء الحذف"

	msgStatusUpdated        = "تم تحديث حالة الطلب بنجاح"
	msgPaymentStatusUpdated = "تم تحديث حالة الدفع بنجاح"
	msgPasswordUpdated      = "تم تغيير كلمة المرور بنجاح"
)

func deletedMessage(n int) string {
	if n == 1 {
		return "تم حذف عنصر واحد بنجاح"
	}
	return fmt.Sprintf("تم حذف %d عناصر بنجاح", n)
}

func fallbackMessage(err error, fallback string) string {
	if msg := backend.ErrorMessage(err); msg != "" {
		return msg
	}
	return fallback
}
