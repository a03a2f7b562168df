// Package workflow описывает жизненный цикл заметки: создание владельцем или админом,
// отметку о выполнении владельцем и проверку админом (approve/reject).
//
// Пакет не выполняет ввод-вывод. Одни и те же проверки используются дашбордом
// (как быстрый отказ до сетевого вызова) и бэкендом (как окончательное решение).
package workflow
